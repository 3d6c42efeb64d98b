// Package router decides which capability handles a user utterance.
package router

// Tool is the closed set of capability handlers a Decision can name.
type Tool string

const (
	ToolAddressAnalyzer Tool = "address_analyzer"
	ToolWebSearch       Tool = "web_search"
	ToolContextAnswer   Tool = "context_answer"
	ToolCodeGenerator   Tool = "code_generator"
	ToolReadle          Tool = "readle"
	ToolMemoryRecall    Tool = "memory_recall"
	ToolGeneralChat     Tool = "general_chat"
)

// Tools lists every valid Tool.
var Tools = []Tool{
	ToolAddressAnalyzer,
	ToolWebSearch,
	ToolContextAnswer,
	ToolCodeGenerator,
	ToolReadle,
	ToolMemoryRecall,
	ToolGeneralChat,
}

// Valid reports whether t is one of Tools.
func (t Tool) Valid() bool {
	for _, known := range Tools {
		if t == known {
			return true
		}
	}
	return false
}

func (t Tool) String() string {
	return string(t)
}

// intentTools maps classifier labels to tools. Unknown labels become general chat.
var intentTools = map[string]Tool{
	"MEMORY_RECALL":    ToolMemoryRecall,
	"CODE_GENERATOR":   ToolCodeGenerator,
	"READLE":           ToolReadle,
	"CONTEXT_ANSWER":   ToolContextAnswer,
	"ADDRESS_ANALYSIS": ToolAddressAnalyzer,
	"FRESH_SEARCH":     ToolWebSearch,
	"GENERAL_CHAT":     ToolGeneralChat,
}

// ToolForIntent maps a classifier label to its tool.
func ToolForIntent(label string) Tool {
	if t, ok := intentTools[label]; ok {
		return t
	}
	return ToolGeneralChat
}
