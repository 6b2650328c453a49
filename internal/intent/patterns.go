package intent

import "github.com/rcliao/shop-recommender/internal/model"

// patternSpec is the uncompiled form of one intent's rule.
type patternSpec struct {
	intent   model.Intent
	priority int
	patterns []string
}

// Declaration order breaks priority ties. The first capturing group of a
// pattern, when present, is reported as the extracted text.
var patternSpecs = []patternSpec{
	{
		intent:   model.IntentCompare,
		priority: 90,
		patterns: []string{
			`(?i)\b(?:compare|comparing|comparison)\b\s*(.*)`,
			`(?i)\bdifference between\s+(.+)`,
			`(?i)(\S.*?)\s+(?:vs\.?|versus)\s+\S.*`,
			`(?i)\bwhich (?:one )?is better\b`,
		},
	},
	{
		intent:   model.IntentAskPrice,
		priority: 85,
		patterns: []string{
			`(?i)\bhow much\b(?:\s+(?:is|are|does|do)\b)?\s*(.*)`,
			`(?i)\bprice (?:of|for)\s+(.+)`,
			`(?i)\bwhat(?:'s| is| are) the (?:price|cost)s?\b`,
			`(?i)\bcosts? of\s+(.+)`,
			`(?i)\bhow expensive\b`,
		},
	},
	{
		intent:   model.IntentAskStock,
		priority: 85,
		patterns: []string{
			`(?i)\b(?:is|are)\s+(.+?)\s+(?:in stock|available)\b`,
			`(?i)\bwhen will\s+(.+?)\s+be (?:available|back)\b`,
			`(?i)\b(?:in stock|out of stock|sold out|back in stock|availability)\b`,
		},
	},
	{
		intent:   model.IntentRecommend,
		priority: 80,
		patterns: []string{
			`(?i)\b(?:recommend|recommendations?|suggest|suggestions?)\b\s*(.*)`,
			`(?i)\bwhat should i (?:buy|get|wear)\b\s*(.*)`,
			`(?i)\b(?:best|top[- ]rated|most popular|trending|best[- ]selling)\s+(.+)`,
			`(?i)\bgift (?:ideas?|for)\b\s*(.*)`,
		},
	},
	{
		intent:   model.IntentSearchProduct,
		priority: 70,
		patterns: []string{
			`(?i)\b(?:looking for|searching for|search for|find me|find|show me|i(?:'m| am)? (?:want|need)(?: to buy)?|i'd like|do you have|got any)\s+(.+)`,
			`(?i)\b(?:buy|shop for|purchase|browse)\s+(.+)`,
			`(?i)\b(?:shoes|sneakers|boots|shirts?|t-shirts?|jeans|pants|dress(?:es)?|jackets?|hoodies?|bags?|backpacks?|watch(?:es)?|phones?|laptops?|headphones|earbuds)\b`,
		},
	},
	{
		intent:   model.IntentHelp,
		priority: 60,
		patterns: []string{
			`(?i)\b(?:help|assist|assistance|support)\b`,
			`(?i)\bwhat can you do\b`,
			`(?i)\bhow (?:does this work|do i|can i)\b`,
		},
	},
	{
		intent:   model.IntentGreeting,
		priority: 50,
		patterns: []string{
			`(?i)^(?:hi|hello|hey|hiya|howdy|greetings|yo|good (?:morning|afternoon|evening))\b[\s!.,]*`,
			`(?i)^(?:what'?s up|sup)\b[\s!?.]*`,
		},
	},
}

var quickReplies = map[model.Intent][]string{
	model.IntentSearchProduct: {"Show me cheaper options", "Only highly rated", "Different color", "Start over"},
	model.IntentAskPrice:      {"Show cheaper options", "What's on sale?", "Compare prices"},
	model.IntentAskStock:      {"Notify me when available", "Show similar items", "Check another size"},
	model.IntentRecommend:     {"Show best sellers", "Something under $50", "Surprise me"},
	model.IntentCompare:       {"Which is cheaper?", "Which is better rated?", "Show both"},
	model.IntentGreeting:      {"Show me popular products", "I'm looking for shoes", "What's on sale?", "Help"},
	model.IntentHelp:          {"Find a product", "Get recommendations", "Check a price"},
	model.IntentUnknown:       {"Find a product", "Get recommendations", "Help"},
}

var responseTemplates = map[model.Intent][]string{
	model.IntentSearchProduct: {
		"Here's what I found for you:",
		"I found some products that match your search:",
		"Take a look at these matches:",
	},
	model.IntentAskPrice: {
		"Here are some options with their prices:",
		"These are the prices I found:",
		"Here's the pricing for products that match:",
	},
	model.IntentAskStock: {
		"Here's what we currently have available:",
		"These items are in our catalog right now:",
		"I checked our catalog and found these:",
	},
	model.IntentRecommend: {
		"Based on what you like, I'd recommend these:",
		"Here are my top picks for you:",
		"You might love these:",
	},
	model.IntentCompare: {
		"I can help you compare. Which products would you like to look at side by side?",
		"Tell me the two products you're deciding between and I'll compare them.",
		"Comparing is a great idea. What are you choosing between?",
	},
	model.IntentGreeting: {
		"Hi there! What are you shopping for today?",
		"Hello! I can help you find products, check prices or recommend something.",
		"Hey! Looking for something specific or want some recommendations?",
	},
	model.IntentHelp: {
		"I can search products, check prices and stock, compare items and give recommendations. Just tell me what you need.",
		"Try asking something like \"running shoes under $100\" or \"recommend a gift for my dad\".",
		"Describe what you're looking for, including brand, color, size or budget, and I'll find matches.",
	},
	model.IntentUnknown: {
		"I'm not sure I understood. Could you tell me what product you're looking for?",
		"Sorry, I didn't catch that. Try describing the product, brand or budget you have in mind.",
		"Could you rephrase that? For example: \"show me black sneakers under $80\".",
	},
}
