package daraja

import (
	"encoding/base64"
	"time"

	"daraja-gateway/internal/domain"
)

// timestampLayout is Daraja's compact numeric form, YYYYMMDDHHMMSS.
const timestampLayout = "20060102150405"

const transactionTypePayBill = "CustomerPayBillOnline"

// BuildSTKPush deterministically constructs the signed push payload.
// The password is a shared-secret proof: base64(shortcode + passkey + timestamp),
// not a hash, so the passkey itself must stay out of logs and responses.
// Reference and description default to timestamp-derived values when the
// caller supplies none.
func BuildSTKPush(
	shortcode, passkey, callbackURL string,
	phone domain.PhoneNumber,
	amount domain.Amount,
	accountRef, description string,
	at time.Time,
) *STKPushRequest {
	timestamp := at.Format(timestampLayout)
	password := base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))

	if accountRef == "" {
		accountRef = "ORDER_" + timestamp
	}
	if description == "" {
		description = "Payment for order " + timestamp
	}

	return &STKPushRequest{
		BusinessShortCode: shortcode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   transactionTypePayBill,
		Amount:            int64(amount),
		PartyA:            phone.String(),
		PartyB:            shortcode,
		PhoneNumber:       phone.String(),
		CallBackURL:       callbackURL,
		AccountReference:  accountRef,
		TransactionDesc:   description,
	}
}
