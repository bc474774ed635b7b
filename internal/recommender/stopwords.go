package recommender

// Stop-words en inglés que se excluyen al vectorizar (el catálogo de TMDB
// viene en en-US). Lista basada en la clásica de los vectorizadores de texto.
var stopWords = map[string]bool{}

func init() {
	for _, w := range []string{
		"a", "about", "above", "after", "again", "against", "all", "also", "am",
		"an", "and", "any", "are", "as", "at", "back", "be", "became", "because",
		"been", "before", "being", "below", "between", "both", "but", "by", "can",
		"cannot", "could", "did", "do", "does", "doing", "down", "during", "each",
		"else", "ever", "every", "few", "find", "first", "for", "from", "further",
		"get", "go", "had", "has", "have", "having", "he", "her", "here", "hers",
		"herself", "him", "himself", "his", "how", "however", "if", "in", "into",
		"is", "it", "its", "itself", "just", "last", "like", "made",
		"make", "many", "may", "me", "might", "more", "most", "much", "must",
		"my", "myself", "never", "new", "no", "nor", "not", "now", "of", "off",
		"on", "once", "one", "only", "or", "other", "our", "ours", "ourselves",
		"out", "over", "own", "same", "she", "should", "since", "so", "some",
		"still", "such", "take", "than", "that", "the", "their", "theirs",
		"them", "themselves", "then", "there", "these", "they", "this", "those",
		"through", "to", "too", "two", "under", "until", "up", "upon", "us",
		"very", "was", "we", "were", "what", "when", "where", "which", "while",
		"who", "whom", "whose", "why", "will", "with", "within", "without",
		"would", "you", "your", "yours", "yourself", "yourselves",
	} {
		stopWords[w] = true
	}
}
