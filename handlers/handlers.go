package handlers

import (
	"or_flow_app_go/realtime"
	"or_flow_app_go/services/voice"
)

// Shared wiring set from main at startup
var (
	// Hub broadcasts tracker changes to connected OR status boards
	Hub *realtime.Hub
	// VoiceBus carries recognized timer commands to interested listeners
	VoiceBus *voice.Bus
)

// broadcast pushes a resource change to the boards if the hub is wired up
func broadcast(resourceType, action, caseID string, payload interface{}) {
	if Hub != nil {
		Hub.BroadcastChange(resourceType, action, caseID, payload)
	}
}
