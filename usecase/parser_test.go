package usecase

import (
	"testing"

	domainCommand "github.com/AxelF0/whatsapp-system/domains/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractParametersCreateProperty(t *testing.T) {
	parser := NewParserService()

	params := parser.ExtractParameters(
		"NUEVA PROPIEDAD Casa en Equipetrol 150000 BS 3 dormitorios 2 baños",
		domainCommand.TypeCreateProperty,
	)

	require.NotNil(t, params.PropertyData)
	data := params.PropertyData
	assert.Equal(t, 150000, data.Precio)
	assert.Equal(t, 3, data.Dormitorios)
	assert.Equal(t, 2, data.Banos)
	assert.Equal(t, "Equipetrol", data.Ubicacion)
	assert.Equal(t, "casa", data.TipoPropiedad)
	assert.Equal(t, "Casa en Equipetrol", data.NombrePropiedad)
}

func TestExtractParametersPropertyVariants(t *testing.T) {
	parser := NewParserService()

	params := parser.ExtractParameters(
		"REGISTRAR PROPIEDAD Departamento en Zona Norte 80000 bolivianos 2 habitaciones 1 baño",
		domainCommand.TypeCreateProperty,
	)

	require.NotNil(t, params.PropertyData)
	assert.Equal(t, 80000, params.PropertyData.Precio)
	assert.Equal(t, 2, params.PropertyData.Dormitorios)
	assert.Equal(t, 1, params.PropertyData.Banos)
	assert.Equal(t, "Zona Norte", params.PropertyData.Ubicacion)
	assert.Equal(t, "departamento", params.PropertyData.TipoPropiedad)
}

func TestExtractParametersUpdateProperty(t *testing.T) {
	parser := NewParserService()

	params := parser.ExtractParameters(
		"MODIFICAR PROPIEDAD ID 4 precio 90000 bs",
		domainCommand.TypeUpdateProperty,
	)

	assert.Equal(t, 4, params.PropertyID)
	require.NotNil(t, params.UpdateData)
	assert.Equal(t, 90000, params.UpdateData.Precio)
}

func TestExtractParametersDeleteProperty(t *testing.T) {
	parser := NewParserService()

	params := parser.ExtractParameters("ELIMINAR PROPIEDAD 12", domainCommand.TypeDeleteProperty)
	assert.Equal(t, 12, params.PropertyID)

	params = parser.ExtractParameters("ELIMINAR PROPIEDAD id 7", domainCommand.TypeDeleteProperty)
	assert.Equal(t, 7, params.PropertyID)

	params = parser.ExtractParameters("ELIMINAR PROPIEDAD", domainCommand.TypeDeleteProperty)
	assert.Zero(t, params.PropertyID)
}

func TestExtractParametersClient(t *testing.T) {
	parser := NewParserService()

	params := parser.ExtractParameters(
		"NUEVO CLIENTE Juan Perez 70012345 juan@example.com",
		domainCommand.TypeCreateClient,
	)

	require.NotNil(t, params.ClientData)
	assert.Equal(t, "Juan", params.ClientData.Nombre)
	assert.Equal(t, "Perez", params.ClientData.Apellido)
	assert.Equal(t, "70012345", params.ClientData.Telefono)
	assert.Equal(t, "juan@example.com", params.ClientData.Email)
}

func TestExtractParametersClientTooShort(t *testing.T) {
	parser := NewParserService()

	params := parser.ExtractParameters("NUEVO CLIENTE", domainCommand.TypeCreateClient)
	require.NotNil(t, params.ClientData)
	assert.Empty(t, params.ClientData.Nombre)
}

func TestExtractParametersAgent(t *testing.T) {
	parser := NewParserService()

	params := parser.ExtractParameters(
		"REGISTRAR AGENTE Maria Lopez 71122334 GERENTE",
		domainCommand.TypeCreateAgent,
	)

	require.NotNil(t, params.AgentData)
	assert.Equal(t, "Maria", params.AgentData.Nombre)
	assert.Equal(t, "Lopez", params.AgentData.Apellido)
	assert.Equal(t, "71122334", params.AgentData.Telefono)
	assert.Equal(t, "GERENTE", params.AgentData.Cargo)

	params = parser.ExtractParameters("NUEVO AGENTE Pedro Rojas 70098765", domainCommand.TypeCreateAgent)
	require.NotNil(t, params.AgentData)
	assert.Equal(t, "AGENTE", params.AgentData.Cargo)
}

func TestExtractParametersListData(t *testing.T) {
	parser := NewParserService()

	params := parser.ExtractParameters(
		"LISTAR PROPIEDADES ubicacion equipetrol precio 200000",
		domainCommand.TypeListData,
	)

	assert.Equal(t, "properties", params.ListType)
	require.NotNil(t, params.Filters)
	assert.Equal(t, "equipetrol", params.Filters.Ubicacion)
	assert.Equal(t, 200000, params.Filters.PrecioMax)

	params = parser.ExtractParameters("MOSTRAR AGENTES", domainCommand.TypeListData)
	assert.Equal(t, "agents", params.ListType)
	assert.Nil(t, params.Filters)

	params = parser.ExtractParameters("LISTAR", domainCommand.TypeListData)
	assert.Equal(t, "all", params.ListType)
}

func TestExtractParametersHelp(t *testing.T) {
	parser := NewParserService()

	assert.Equal(t, "properties", parser.ExtractParameters("AYUDA PROPIEDADES", domainCommand.TypeHelp).Topic)
	assert.Equal(t, "commands", parser.ExtractParameters("AYUDA COMANDOS", domainCommand.TypeHelp).Topic)
	assert.Equal(t, "general", parser.ExtractParameters("AYUDA", domainCommand.TypeHelp).Topic)
}

func TestExtractParametersUnknownKeepsRaw(t *testing.T) {
	parser := NewParserService()

	params := parser.ExtractParameters("que hora es", domainCommand.TypeUnknown)
	assert.Equal(t, "que hora es", params.Raw)
}
