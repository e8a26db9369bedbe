package client

import (
	"github.com/smartbusiness/api2-go/internal/endpoint"
	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

// Resource names, used in error messages, logs and metrics labels.
const (
	ResourceUnits         = "units"
	ResourceBankAccounts  = "bank-accounts"
	ResourceExchangeRates = "exchange-rates"
	ResourceContactGroups = "contact-groups"
	ResourceContacts      = "contacts"
	ResourceAddresses     = "addresses"
	ResourcePeople        = "people"
)

const contactPlaceholder = "contactId"

// crud builds the routes of a resource supporting every operation.
func crud(collection, itemPlaceholder, bulkPlaceholder string) map[sbapi.Operation]endpoint.Route {
	item := collection + "/{" + itemPlaceholder + "}"

	return map[sbapi.Operation]endpoint.Route{
		sbapi.OperationList:   {Template: collection},
		sbapi.OperationGet:    {Template: item, Placeholder: itemPlaceholder},
		sbapi.OperationCreate: {Template: collection},
		sbapi.OperationUpdate: {Template: item, Placeholder: itemPlaceholder},
		sbapi.OperationDelete: {Template: collection + "/{" + bulkPlaceholder + "}", Placeholder: bulkPlaceholder},
	}
}

var (
	unitsDefinition = &endpoint.Definition{
		Name:   ResourceUnits,
		Scopes: []sbapi.Scope{sbapi.ScopeConfiguration},
		Routes: map[sbapi.Operation]endpoint.Route{
			sbapi.OperationList: {Template: "/catalog/configuration/units"},
			sbapi.OperationGet:  {Template: "/catalog/configuration/units/{unitId}", Placeholder: "unitId"},
		},
	}

	bankAccountsDefinition = &endpoint.Definition{
		Name:   ResourceBankAccounts,
		Scopes: []sbapi.Scope{sbapi.ScopeConfiguration},
		Routes: crud("/configuration/bank-accounts", "accountId", "accountsIds"),
	}

	exchangeRatesDefinition = &endpoint.Definition{
		Name:   ResourceExchangeRates,
		Scopes: []sbapi.Scope{sbapi.ScopeConfiguration},
		Routes: crud("/configuration/exchange-rates", "exchangeId", "exchangeIds"),
	}

	contactGroupsDefinition = &endpoint.Definition{
		Name:   ResourceContactGroups,
		Scopes: []sbapi.Scope{sbapi.ScopeContact},
		Routes: crud("/contacts/configuration/groups", "groupId", "groupsIds"),
	}

	contactsDefinition = &endpoint.Definition{
		Name:   ResourceContacts,
		Scopes: []sbapi.Scope{sbapi.ScopeContact},
		Routes: crud("/contacts", "contactId", "contactsIds"),
	}

	addressesDefinition = &endpoint.Definition{
		Name:   ResourceAddresses,
		Scopes: []sbapi.Scope{sbapi.ScopeContact},
		Parent: contactPlaceholder,
		Routes: crud("/contacts/{contactId}/addresses", "addressId", "addressesIds"),
	}

	peopleDefinition = &endpoint.Definition{
		Name:   ResourcePeople,
		Scopes: []sbapi.Scope{sbapi.ScopeContact},
		Parent: contactPlaceholder,
		Routes: crud("/contacts/{contactId}/people", "personId", "peopleIds"),
	}
)

// Definitions returns every registered resource definition in a stable order.
func Definitions() []*endpoint.Definition {
	return []*endpoint.Definition{
		unitsDefinition,
		bankAccountsDefinition,
		exchangeRatesDefinition,
		contactGroupsDefinition,
		contactsDefinition,
		addressesDefinition,
		peopleDefinition,
	}
}

// RequiredScopes returns the union of scopes of every resource, in first
// appearance order.
func RequiredScopes() []sbapi.Scope {
	var scopes []sbapi.Scope

	seen := make(map[sbapi.Scope]bool)

	for _, def := range Definitions() {
		for _, scope := range def.Scopes {
			if !seen[scope] {
				seen[scope] = true
				scopes = append(scopes, scope)
			}
		}
	}

	return scopes
}
