package segmenter

// charsPerToken is the heuristic used to approximate token counts without
// a tokenizer dependency: roughly four characters of source text per token.
const charsPerToken = 4

// EstimateTokens approximates the token count of s as ceil(len(s)/4).
// The empty string estimates to zero.
func EstimateTokens(s string) int {
	return (len(s) + charsPerToken - 1) / charsPerToken
}
