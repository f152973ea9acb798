package daraja

import "strconv"

// STKPushRequest is the wire payload for POST /mpesa/stkpush/v1/processrequest.
type STKPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type STKPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// Accepted reports whether Daraja accepted the push for processing.
// Anything other than code "0" is a terminal business rejection.
func (r *STKPushResponse) Accepted() bool {
	return r.ResponseCode == "0"
}

// tokenResponse is the body of the OAuth credential exchange. Daraja returns
// expires_in as a string ("3599").
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

type errorResponse struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// CallbackEnvelope is the body of the asynchronous result webhook:
// {Body: {stkCallback: {...}}}.
type CallbackEnvelope struct {
	Body CallbackBody `json:"Body"`
}

type CallbackBody struct {
	StkCallback StkCallback `json:"stkCallback"`
}

type StkCallback struct {
	MerchantRequestID string           `json:"MerchantRequestID"`
	CheckoutRequestID string           `json:"CheckoutRequestID"`
	ResultCode        int              `json:"ResultCode"`
	ResultDesc        string           `json:"ResultDesc"`
	CallbackMetadata  CallbackMetadata `json:"CallbackMetadata"`
}

type CallbackMetadata struct {
	Item []MetadataItem `json:"Item"`
}

// MetadataItem is a flat name/value pair. Values arrive as mixed JSON types:
// Amount and TransactionDate as numbers, MpesaReceiptNumber as a string.
type MetadataItem struct {
	Name  string `json:"Name"`
	Value any    `json:"Value"`
}

// MetadataMap flattens the item list for downstream consumption.
func (c *StkCallback) MetadataMap() map[string]any {
	m := make(map[string]any, len(c.CallbackMetadata.Item))
	for _, item := range c.CallbackMetadata.Item {
		m[item.Name] = item.Value
	}
	return m
}

// MetadataString renders a metadata value to its string form regardless of
// the JSON type it arrived as.
func MetadataString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

// MetadataInt64 converts a numeric metadata value, truncating fractions.
func MetadataInt64(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case int64:
		return t
	case string:
		n, _ := strconv.ParseFloat(t, 64)
		return int64(n)
	default:
		return 0
	}
}
