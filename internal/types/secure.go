package types

// maskedPlaceholder is the string substituted for secret values in logs,
// serialized config dumps, and startup error output.
const maskedPlaceholder = "******"

// maskedJSON is the pre-computed JSON encoding of the masked placeholder.
var maskedJSON = []byte(`"******"`)

// SecretString is a string type that prevents accidental logging or
// serialization of sensitive configuration values (broker passwords, SMTP
// credentials, gateway auth tokens). It overrides String() and MarshalJSON()
// to return a masked placeholder, so the fail-fast config error dump never
// leaks plaintext secrets.
//
// Use Unmask() to retrieve the raw value where it is genuinely needed
// (building the AMQP URL, SMTP auth, HTTP basic auth).
type SecretString string

// String returns the masked placeholder instead of the raw value.
// Invoked by fmt.Sprintf, fmt.Println, and anything else honoring
// the fmt.Stringer interface.
func (s SecretString) String() string {
	return maskedPlaceholder
}

// MarshalJSON returns the masked placeholder as a JSON string.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return maskedJSON, nil
}

// Unmask returns the raw plaintext value of the secret.
func (s SecretString) Unmask() string {
	return string(s)
}
