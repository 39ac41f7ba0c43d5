package model

import "strings"

// IntentType is the user's high-level request category.
type IntentType string

const (
	IntentInformationRequest IntentType = "information_request"
	IntentDefenseSuggestion  IntentType = "defense_suggestion"
	IntentSquadBuild         IntentType = "squad_build"
	IntentNone               IntentType = "none"
)

// IntentStructure is the input shape detected by the classifier. It is only
// meaningful when the intent type is IntentInformationRequest.
type IntentStructure string

const (
	StructureEntityNameList             IntentStructure = "entity_name_list"
	StructureNaturalLanguageQuestion    IntentStructure = "natural_language_question"
	StructureNaturalLanguageDescription IntentStructure = "natural_language_description"
	StructureNone                       IntentStructure = "none"
)

// ParseIntentType normalises a classifier label. Unknown labels map to IntentNone.
func ParseIntentType(s string) IntentType {
	switch IntentType(strings.ToLower(strings.TrimSpace(s))) {
	case IntentInformationRequest:
		return IntentInformationRequest
	case IntentDefenseSuggestion:
		return IntentDefenseSuggestion
	case IntentSquadBuild:
		return IntentSquadBuild
	default:
		return IntentNone
	}
}

// ParseIntentStructure normalises a classifier label. "pokemon_names" is the
// legacy spelling of entity_name_list.
func ParseIntentStructure(s string) IntentStructure {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case string(StructureEntityNameList), "pokemon_names":
		return StructureEntityNameList
	case string(StructureNaturalLanguageQuestion):
		return StructureNaturalLanguageQuestion
	case string(StructureNaturalLanguageDescription):
		return StructureNaturalLanguageDescription
	default:
		return StructureNone
	}
}

// IntentTag is the classifier output for one turn.
type IntentTag struct {
	Type      IntentType      `json:"intent_type"`
	Structure IntentStructure `json:"intent_structure"`
}

// Empty reports whether the classifier produced no usable intent type.
func (t IntentTag) Empty() bool {
	return t.Type == "" || t.Type == IntentNone
}

// Route names the branch procedure a tag dispatches to.
type Route string

const (
	RouteEntityNames Route = "entity_names"
	RouteQuestion    Route = "question"
	RouteDescription Route = "description"
	RouteDefense     Route = "defense"
	RouteSquad       Route = "squad"
	RouteNoIntent    Route = "no_intent"
)

// Route dispatches over the (type, structure) pair.
func (t IntentTag) Route() Route {
	switch t.Type {
	case IntentInformationRequest:
		switch t.Structure {
		case StructureEntityNameList:
			return RouteEntityNames
		case StructureNaturalLanguageQuestion:
			return RouteQuestion
		case StructureNaturalLanguageDescription:
			return RouteDescription
		}
		return RouteNoIntent
	case IntentDefenseSuggestion:
		return RouteDefense
	case IntentSquadBuild:
		return RouteSquad
	default:
		return RouteNoIntent
	}
}
