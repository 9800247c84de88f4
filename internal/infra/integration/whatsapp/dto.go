package whatsapp

type SendMessageInput struct {
	PhoneNumber  string   // E.164 without "+", e.g. "919876543210"
	TemplateName string   // e.g. "new_lead_alert"
	Language     string   // template language code, e.g. "en"
	Parameters   []string // body parameters in template order
}

type templateMessage struct {
	Product       string   `json:"messaging_product"`
	RecipientType string   `json:"recipient_type"`
	To            string   `json:"to"`
	Type          string   `json:"type"`
	Template      template `json:"template"`
}

type template struct {
	Name       string      `json:"name"`
	Language   language    `json:"language"`
	Components []component `json:"components"`
}

type language struct {
	Code string `json:"code"`
}

type component struct {
	Type       string      `json:"type"`
	Parameters []textParam `json:"parameters"`
}

type textParam struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
