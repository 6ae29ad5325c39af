package usecase

import (
	"context"
	"testing"

	domainCommand "github.com/AxelF0/whatsapp-system/domains/command"
	domainIdentity "github.com/AxelF0/whatsapp-system/domains/identity"
	domainMessage "github.com/AxelF0/whatsapp-system/domains/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	validation domainIdentity.Validation
	calls      int
}

func (s *stubValidator) Validate(ctx context.Context, phone string) domainIdentity.Validation {
	s.calls++
	return s.validation
}

func (s *stubValidator) ValidateMultiple(ctx context.Context, phones []string) map[string]domainIdentity.Validation {
	out := make(map[string]domainIdentity.Validation, len(phones))
	for _, p := range phones {
		out[p] = s.Validate(ctx, p)
	}
	return out
}

func (s *stubValidator) ValidUsers(ctx context.Context, phones []string) map[string]domainIdentity.Identity {
	return nil
}

func (s *stubValidator) Close() {}

func TestAnalyzeWebSessionIsAlwaysClientQuery(t *testing.T) {
	validator := &stubValidator{}
	analyzer := NewAnalyzerService(validator)

	analysis := analyzer.Analyze(context.Background(), domainMessage.InboundEnvelope{
		ID:     "m1",
		From:   "59170000001",
		To:     "59171337051",
		Body:   "ELIMINAR PROPIEDAD 12",
		Source: domainMessage.SourceWebSession,
	})

	assert.Equal(t, domainMessage.TypeClientQuery, analysis.Type)
	assert.True(t, analysis.RequiresIA)
	assert.False(t, analysis.RequiresBackend)
	assert.Equal(t, "59170000001", analysis.ClientPhone)
	assert.Equal(t, "59171337051", analysis.AgentPhone)
	// El texto parece comando pero el origen manda: nunca se valida identidad.
	assert.Zero(t, validator.calls)
}

func TestAnalyzeOfficialAPIValidStaff(t *testing.T) {
	validator := &stubValidator{validation: domainIdentity.Validation{
		IsValid:  true,
		Identity: &domainIdentity.Identity{ID: 7, Nombre: "Carla", Cargo: "Gerente", Telefono: "59171111111", Estado: 1},
	}}
	analyzer := NewAnalyzerService(validator)

	analysis := analyzer.Analyze(context.Background(), domainMessage.InboundEnvelope{
		ID:     "m2",
		From:   "59171111111",
		Body:   "NUEVA PROPIEDAD Casa en Equipetrol 150000 BS",
		Source: domainMessage.SourceOfficialAPI,
	})

	require.Equal(t, domainMessage.TypeStaffCommand, analysis.Type)
	assert.True(t, analysis.RequiresBackend)
	assert.False(t, analysis.RequiresIA)
	require.NotNil(t, analysis.UserData)
	assert.Equal(t, "gerente", analysis.UserData.Role())
	assert.Equal(t, domainCommand.TypeCreateProperty, analysis.Content.CommandType)
	assert.True(t, analysis.Content.IsCommand)
}

func TestAnalyzeOfficialAPIUnknownSender(t *testing.T) {
	validator := &stubValidator{validation: domainIdentity.Validation{IsValid: false}}
	analyzer := NewAnalyzerService(validator)

	analysis := analyzer.Analyze(context.Background(), domainMessage.InboundEnvelope{
		ID:     "m3",
		From:   "59169999999",
		Body:   "hola",
		Source: domainMessage.SourceOfficialAPI,
	})

	assert.Equal(t, domainMessage.TypeInvalidSender, analysis.Type)
	assert.False(t, analysis.RequiresIA)
	assert.False(t, analysis.RequiresBackend)
}

func TestAnalyzeUnknownSource(t *testing.T) {
	analyzer := NewAnalyzerService(&stubValidator{})

	analysis := analyzer.Analyze(context.Background(), domainMessage.InboundEnvelope{
		ID:     "m4",
		Source: "telegram",
	})

	assert.Equal(t, domainMessage.TypeUnknownSource, analysis.Type)
}

func TestClientIntentPrecedence(t *testing.T) {
	cases := []struct {
		body string
		want domainMessage.Intent
	}{
		{"Hola, busco una casa en zona norte de 150000 bs", domainMessage.IntentPropertySearch},
		{"Hola, buenos dias", domainMessage.IntentGreeting},
		{"necesito ayuda por favor", domainMessage.IntentHelpRequest},
		{"cuando abren?", domainMessage.IntentGeneralQuery},
	}

	for _, tc := range cases {
		content := analyzeClientContent(tc.body)
		assert.Equal(t, tc.want, content.Intent, "body %q", tc.body)
	}
}

func TestClientContentFlags(t *testing.T) {
	content := analyzeClientContent("Hola, busco un departamento en Equipetrol hasta 1200 $")

	assert.True(t, content.HasGreeting)
	assert.True(t, content.HasPropertyRequest)
	assert.True(t, content.HasPriceRange)
	assert.True(t, content.HasLocationPreference)
}

func TestCommandPhraseDetection(t *testing.T) {
	cases := []struct {
		body string
		want domainCommand.Type
	}{
		{"NUEVA PROPIEDAD Casa en Equipetrol", domainCommand.TypeCreateProperty},
		{"registrar propiedad terreno en el urubo", domainCommand.TypeCreateProperty},
		{"MODIFICAR PROPIEDAD ID 4 precio 90000", domainCommand.TypeUpdateProperty},
		{"ELIMINAR PROPIEDAD 12", domainCommand.TypeDeleteProperty},
		{"NUEVO CLIENTE Juan Perez 70012345", domainCommand.TypeCreateClient},
		{"MODIFICAR CLIENTE Juan Perez 70012345", domainCommand.TypeUpdateClient},
		{"REGISTRAR AGENTE Maria Lopez 71122334 AGENTE", domainCommand.TypeCreateAgent},
		{"LISTAR PROPIEDADES ubicacion equipetrol", domainCommand.TypeListData},
		{"AYUDA", domainCommand.TypeHelp},
		{"buen dia equipo", domainCommand.TypeUnknown},
	}

	for _, tc := range cases {
		content := analyzeCommandContent(tc.body)
		assert.Equal(t, tc.want, content.CommandType, "body %q", tc.body)
	}
}
