package keywords

import "github.com/rcliao/shop-recommender/internal/model"

type categoryVocab struct {
	category string
	keywords []string
}

// Category keywords are matched as substrings, so entries that hide inside
// common words ("hat" in "what", "tee" in "between") are left out.
var categoryVocabulary = []categoryVocab{
	{category: "shoes", keywords: []string{"shoes", "shoe", "sneakers", "sneaker", "boots", "sandals", "high heels", "loafers", "trainers", "footwear", "slippers"}},
	{category: "clothing", keywords: []string{"clothing", "clothes", "apparel", "shirt", "t-shirt", "tshirt", "jeans", "pants", "trousers", "dress", "skirt", "jacket", "coat", "hoodie", "sweater", "shorts", "blouse", "leggings"}},
	{category: "electronics", keywords: []string{"electronics", "phone", "smartphone", "laptop", "tablet", "headphones", "earbuds", "camera", "charger", "speaker", "television", "monitor", "keyboard"}},
	{category: "accessories", keywords: []string{"accessories", "watch", "handbag", "backpack", "wallet", "belt", "sunglasses", "jewelry", "jewellery", "necklace", "bracelet", "earrings", "scarf"}},
	{category: "bags", keywords: []string{"bag", "tote", "purse", "luggage", "suitcase", "duffel"}},
	{category: "beauty", keywords: []string{"beauty", "makeup", "lipstick", "skincare", "perfume", "fragrance", "cosmetics", "moisturizer", "shampoo"}},
	{category: "home", keywords: []string{"furniture", "sofa", "couch", "chair", "desk", "lamp", "bedding", "mattress", "pillow", "kitchen", "cookware", "decor"}},
	{category: "sports", keywords: []string{"sports", "fitness", "yoga", "gym", "running", "football", "soccer", "basketball", "tennis", "cycling", "bicycle", "hiking"}},
	{category: "books", keywords: []string{"book", "novel", "ebook", "textbook"}},
	{category: "toys", keywords: []string{"toy", "lego", "puzzle", "board game", "dolls"}},
}

// Canonical casing is the vocabulary's own (lower case).
var brandVocabulary = []string{
	"nike", "adidas", "puma", "reebok", "new balance", "under armour", "asics", "converse", "vans",
	"levi's", "zara", "uniqlo", "the north face", "patagonia", "gucci", "prada",
	"apple", "samsung", "sony", "xiaomi", "lenovo", "dell", "asus", "canon", "nikon", "bose", "jbl",
	"ikea", "lego", "loreal", "maybelline",
}

var colorVocabulary = []string{
	"black", "white", "red", "blue", "green", "yellow", "orange", "purple", "pink", "brown",
	"gray", "grey", "beige", "navy", "gold", "silver", "maroon", "teal", "cream", "khaki",
}

type sizeToken struct {
	token string
	size  string
}

// Multi-word spellings are listed before their single-word suffixes and are
// consumed once matched.
var sizePhrases = []sizeToken{
	{token: "extra extra large", size: "XXL"},
	{token: "extra small", size: "XS"},
	{token: "extra large", size: "XL"},
	{token: "x-small", size: "XS"},
	{token: "x-large", size: "XL"},
	{token: "xx-large", size: "XXL"},
}

var sizeTokens = []sizeToken{
	{token: "xxs", size: "XXS"},
	{token: "xs", size: "XS"},
	{token: "s", size: "S"},
	{token: "m", size: "M"},
	{token: "l", size: "L"},
	{token: "xl", size: "XL"},
	{token: "xxl", size: "XXL"},
	{token: "xxxl", size: "XXXL"},
	{token: "small", size: "S"},
	{token: "medium", size: "M"},
	{token: "large", size: "L"},
}

type modifierVocab struct {
	keyword  string
	modifier model.PriceModifier
}

// Checked in order; "inexpensive" precedes "expensive" for that reason.
var priceModifierVocabulary = []modifierVocab{
	{keyword: "cheap", modifier: model.PriceCheap},
	{keyword: "affordable", modifier: model.PriceCheap},
	{keyword: "budget", modifier: model.PriceCheap},
	{keyword: "inexpensive", modifier: model.PriceCheap},
	{keyword: "low price", modifier: model.PriceCheap},
	{keyword: "low-cost", modifier: model.PriceCheap},
	{keyword: "bargain", modifier: model.PriceCheap},
	{keyword: "mid-range", modifier: model.PriceMid},
	{keyword: "mid range", modifier: model.PriceMid},
	{keyword: "moderate", modifier: model.PriceMid},
	{keyword: "reasonably priced", modifier: model.PriceMid},
	{keyword: "expensive", modifier: model.PriceExpensive},
	{keyword: "premium", modifier: model.PriceExpensive},
	{keyword: "luxury", modifier: model.PriceExpensive},
	{keyword: "high-end", modifier: model.PriceExpensive},
	{keyword: "high end", modifier: model.PriceExpensive},
	{keyword: "designer", modifier: model.PriceExpensive},
}

type genderVocab struct {
	keyword string
	gender  model.Gender
}

var genderVocabulary = []genderVocab{
	{keyword: "men", gender: model.GenderMen},
	{keyword: "men's", gender: model.GenderMen},
	{keyword: "mens", gender: model.GenderMen},
	{keyword: "male", gender: model.GenderMen},
	{keyword: "guy", gender: model.GenderMen},
	{keyword: "guys", gender: model.GenderMen},
	{keyword: "women", gender: model.GenderWomen},
	{keyword: "women's", gender: model.GenderWomen},
	{keyword: "womens", gender: model.GenderWomen},
	{keyword: "female", gender: model.GenderWomen},
	{keyword: "lady", gender: model.GenderWomen},
	{keyword: "ladies", gender: model.GenderWomen},
	{keyword: "unisex", gender: model.GenderUnisex},
	{keyword: "kid", gender: model.GenderKids},
	{keyword: "kids", gender: model.GenderKids},
	{keyword: "children", gender: model.GenderKids},
	{keyword: "child", gender: model.GenderKids},
	{keyword: "boy", gender: model.GenderKids},
	{keyword: "boys", gender: model.GenderKids},
	{keyword: "girl", gender: model.GenderKids},
	{keyword: "girls", gender: model.GenderKids},
}

var stopWords = toSet([]string{
	"the", "and", "for", "with", "that", "this", "these", "those", "are", "was", "were", "you", "your",
	"can", "could", "would", "should", "will", "have", "has", "had", "not", "but", "from", "about",
	"what", "which", "who", "how", "when", "where", "why", "any", "some", "something", "anything",
	"looking", "look", "find", "search", "searching", "want", "need", "show", "get", "buy", "please",
	"like", "just", "also", "there", "here", "them", "they", "their", "our", "out", "into", "its",
	"him", "her", "his", "she", "all", "too", "very", "really", "much", "many", "more", "less",
	"under", "over", "below", "above", "between", "than", "least", "price", "cost", "costs",
	"dollars", "give", "tell", "help", "thanks", "thank", "hello", "hey",
})

func toSet(words []string) map[string]bool {
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[w] = true
	}
	return out
}
