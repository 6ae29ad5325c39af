package usecase

import (
	"fmt"
	"strings"

	domainCommand "github.com/AxelF0/whatsapp-system/domains/command"
	"github.com/sirupsen/logrus"
)

// rolePermissions is the static authority table. Absence of a role or of a
// command type under a role denies, so new command types stay locked until
// someone grants them here.
var rolePermissions = map[string]map[domainCommand.Type]bool{
	"gerente": {
		domainCommand.TypeCreateProperty: true,
		domainCommand.TypeUpdateProperty: true,
		domainCommand.TypeDeleteProperty: true,
		domainCommand.TypeCreateClient:   true,
		domainCommand.TypeUpdateClient:   true,
		domainCommand.TypeCreateAgent:    true,
		domainCommand.TypeUpdateAgent:    true,
		domainCommand.TypeListData:       true,
		domainCommand.TypeHelp:           true,
	},
	"agente": {
		domainCommand.TypeCreateProperty: true,
		domainCommand.TypeUpdateProperty: true,
		domainCommand.TypeDeleteProperty: false,
		domainCommand.TypeCreateClient:   true,
		domainCommand.TypeUpdateClient:   true,
		domainCommand.TypeCreateAgent:    false,
		domainCommand.TypeUpdateAgent:    false,
		domainCommand.TypeListData:       true,
		domainCommand.TypeHelp:           true,
	},
}

type permissionService struct{}

func NewPermissionService() domainCommand.IPermissionUsecase {
	return &permissionService{}
}

// Authorize answers whether a role may run a command type. It fails closed:
// unknown roles and unknown command types are always denied.
func (s *permissionService) Authorize(role string, commandType domainCommand.Type) domainCommand.Authorization {
	normalized := strings.ToLower(strings.TrimSpace(role))

	perms, knownRole := rolePermissions[normalized]
	if !knownRole || commandType == domainCommand.TypeUnknown {
		logrus.Warnf("[PERMISSIONS] denegado rol=%q comando=%q (no reconocido)", role, commandType)
		return domainCommand.Authorization{
			Allowed:       false,
			DeniedUnknown: true,
			Reason:        "Comando no válido o no reconocido",
		}
	}

	allowed, knownCommand := perms[commandType]
	if !knownCommand {
		return domainCommand.Authorization{
			Allowed:       false,
			DeniedUnknown: true,
			Reason:        "Comando no válido o no reconocido",
		}
	}

	if !allowed {
		return domainCommand.Authorization{
			Allowed: false,
			Reason:  fmt.Sprintf("Los %ss no tienen permisos para: %s", normalized, commandType),
		}
	}

	return domainCommand.Authorization{Allowed: true}
}
