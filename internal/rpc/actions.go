package rpc

import "fmt"

// Action names a remote procedure. The set is closed: every Action has a
// typed method on Service and a case in Dispatch.
type Action string

const (
	ActionGetServices         Action = "getServices"
	ActionAddService          Action = "addService"
	ActionUpdateService       Action = "updateService"
	ActionBulkUpdateServices  Action = "bulkUpdateServices"
	ActionDeleteService       Action = "deleteService"
	ActionGenerateIdeaDetails Action = "getAIGeneratedIdeaDetails"
	ActionRanking             Action = "getAIRanking"
	ActionInsight             Action = "getAIInsight"
	ActionLogin               Action = "loginUser"
	ActionRegister            Action = "registerUser"
)

var actions = []Action{
	ActionGetServices,
	ActionAddService,
	ActionUpdateService,
	ActionBulkUpdateServices,
	ActionDeleteService,
	ActionGenerateIdeaDetails,
	ActionRanking,
	ActionInsight,
	ActionLogin,
	ActionRegister,
}

// Actions returns every known action.
func Actions() []Action {
	return append([]Action(nil), actions...)
}

// ParseAction validates a wire action name.
func ParseAction(name string) (Action, error) {
	for _, a := range actions {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("ação desconhecida: %s", name)
}

// Protected reports whether the action requires a session token.
// Only login and registration are public.
func (a Action) Protected() bool {
	return a != ActionLogin && a != ActionRegister
}

func (a Action) String() string {
	return string(a)
}
