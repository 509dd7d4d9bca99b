package google

type generateRequest struct {
	Contents []content `json:"contents"`

	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`

	Tools      []toolParam `json:"tools,omitempty"`
	ToolConfig *toolConfig `json:"toolConfig,omitempty"`
}

type content struct {
	Role string `json:"role"`

	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`

	FunctionCall     *functionCall     `json:"functionCall,omitempty"`
	FunctionResponse *functionResponse `json:"functionResponse,omitempty"`

	ThoughtSignature string `json:"thoughtSignature,omitempty"`
}

type functionCall struct {
	Name string `json:"name"`

	Args map[string]any `json:"args"`
}

type functionResponse struct {
	Name string `json:"name"`

	Response map[string]any `json:"response"`
}

type generationConfig struct {
	Temperature     *float32 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

type toolParam struct {
	FunctionDeclarations []functionDeclaration `json:"functionDeclarations"`
}

type functionDeclaration struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Parameters map[string]any `json:"parameters,omitempty"`
}

type toolConfig struct {
	FunctionCallingConfig functionCallingConfig `json:"functionCallingConfig"`
}

type functionCallingConfig struct {
	Mode string `json:"mode"`

	AllowedFunctionNames []string `json:"allowedFunctionNames,omitempty"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`

	UsageMetadata *usageMetadata `json:"usageMetadata"`
}

type candidate struct {
	Content content `json:"content"`

	FinishReason string `json:"finishReason"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}
