package notify

import (
	"errors"
	"fmt"
	"strings"

	"stockwatch/internal/models"
)

// ErrUnknownCarrier is returned when no email-to-SMS gateway is known for a
// carrier. There is deliberately no default carrier.
var ErrUnknownCarrier = errors.New("unknown carrier")

// carrierGateways maps a carrier name to its email-to-SMS gateway domain
var carrierGateways = map[string]string{
	"verizon":      "vtext.com",
	"att":          "txt.att.net",
	"tmobile":      "tmomail.net",
	"sprint":       "messaging.sprintpcs.com",
	"boost":        "sms.myboostmobile.com",
	"cricket":      "sms.cricketwireless.net",
	"metropcs":     "mymetropcs.com",
	"virgin":       "vmobl.com",
	"uscellular":   "email.uscc.net",
	"straighttalk": "vtext.com",
}

// GatewayFor returns the email-to-SMS gateway domain for a carrier
func GatewayFor(carrier string) (string, error) {
	gateway, ok := carrierGateways[strings.ToLower(strings.TrimSpace(carrier))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCarrier, carrier)
	}
	return gateway, nil
}

// ResolveAddress turns a destination into the email address alerts are sent
// to: phone@gateway when phone and carrier are set, otherwise the user's
// plain email address.
func ResolveAddress(dest models.Destination) (string, error) {
	if dest.PhoneNumber != "" && dest.Carrier != "" {
		gateway, err := GatewayFor(dest.Carrier)
		if err != nil {
			return "", err
		}
		return cleanPhone(dest.PhoneNumber) + "@" + gateway, nil
	}
	if dest.Email != "" {
		return dest.Email, nil
	}
	return "", errors.New("destination has no phone or email")
}

func cleanPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
