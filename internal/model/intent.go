// Package model defines the core recommendation and conversation data types.
package model

// Intent is the conversational intent detected for a user message.
type Intent string

const (
	IntentSearchProduct Intent = "SEARCH_PRODUCT"
	IntentAskPrice      Intent = "ASK_PRICE"
	IntentAskStock      Intent = "ASK_STOCK"
	IntentRecommend     Intent = "RECOMMEND"
	IntentCompare       Intent = "COMPARE"
	IntentGreeting      Intent = "GREETING"
	IntentHelp          Intent = "HELP"
	IntentUnknown       Intent = "UNKNOWN"
)

// Intents lists every intent in declaration order.
var Intents = []Intent{
	IntentSearchProduct,
	IntentAskPrice,
	IntentAskStock,
	IntentRecommend,
	IntentCompare,
	IntentGreeting,
	IntentHelp,
	IntentUnknown,
}

// ValidIntents are the allowed intent values.
var ValidIntents = map[Intent]bool{
	IntentSearchProduct: true,
	IntentAskPrice:      true,
	IntentAskStock:      true,
	IntentRecommend:     true,
	IntentCompare:       true,
	IntentGreeting:      true,
	IntentHelp:          true,
	IntentUnknown:       true,
}

// WantsProducts reports whether a message with this intent should be
// answered with scored recommendations.
func (i Intent) WantsProducts() bool {
	switch i {
	case IntentSearchProduct, IntentRecommend, IntentAskPrice, IntentAskStock:
		return true
	}
	return false
}
