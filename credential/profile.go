package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Disabled is the value an external secret uses for the federated portal
// URL when federated login should be skipped.
const Disabled = "N/A"

var (
	// ErrMissingField is returned when a required secret field is absent or empty.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidSecret is returned when a secret blob is not a JSON object.
	ErrInvalidSecret = errors.New("invalid secret")

	// ErrSecretNotFound is returned when the named secret does not exist.
	ErrSecretNotFound = errors.New("secret not found")
)

// Kind is the login topology a profile describes.
type Kind string

const (
	// KindSingleLogin checks the application login only.
	KindSingleLogin Kind = "single-login"
	// KindFederatedLogin additionally signs in through the federated portal.
	KindFederatedLogin Kind = "federated-login"
)

// Account is a URL with the credentials used on it.
type Account struct {
	URL      string
	Username string
	Password string
}

// Profile is everything the monitor needs to run one check.
type Profile struct {
	Kind       Kind
	Target     Account
	Federated  *Account
	Recipients Recipients
}

// IsFederated reports whether the federated login step runs.
func (p *Profile) IsFederated() bool {
	return p.Kind == KindFederatedLogin && p.Federated != nil
}

// FederatedURL returns the portal URL, or Disabled.
func (p *Profile) FederatedURL() string {
	if !p.IsFederated() {
		return Disabled
	}
	return p.Federated.URL
}

// Validate checks that the profile is internally consistent.
func (p *Profile) Validate() error {
	if err := requireFields(map[string]string{
		"url":      p.Target.URL,
		"username": p.Target.Username,
		"password": p.Target.Password,
	}); err != nil {
		return err
	}

	switch p.Kind {
	case KindSingleLogin:
		if p.Federated != nil {
			return fmt.Errorf("%w: single-login profile carries federated credentials", ErrInvalidSecret)
		}
	case KindFederatedLogin:
		if p.Federated == nil {
			return fmt.Errorf("%w: mingle_url", ErrMissingField)
		}
		if err := requireFields(map[string]string{
			"mingle_url":      p.Federated.URL,
			"mingle_username": p.Federated.Username,
			"mingle_password": p.Federated.Password,
		}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown profile kind %q", ErrInvalidSecret, p.Kind)
	}
	return nil
}

// LogFields describes the profile for logs. Passwords are never included.
func (p *Profile) LogFields() map[string]interface{} {
	fields := map[string]interface{}{
		"kind":       string(p.Kind),
		"url":        p.Target.URL,
		"username":   p.Target.Username,
		"mingle_url": p.FederatedURL(),
		"email_list": strings.Join(p.Recipients, ","),
	}
	if p.IsFederated() {
		fields["mingle_username"] = p.Federated.Username
	} else {
		fields["mingle_username"] = Disabled
	}
	return fields
}

func requireFields(fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
}

// secretBlob is the JSON layout of the monitoring secret.
type secretBlob struct {
	URL            string      `json:"url"`
	Username       string      `json:"username"`
	Password       string      `json:"password"`
	EmailList      *Recipients `json:"email_list"`
	MingleURL      *string     `json:"mingle_url"`
	MingleUsername string      `json:"mingle_username"`
	MinglePassword string      `json:"mingle_password"`
}

// Parse decodes a secret blob into a Profile. The profile is federated when
// mingle_url is present and not Disabled.
func Parse(data []byte) (*Profile, error) {
	var blob secretBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	if blob.EmailList == nil {
		return nil, fmt.Errorf("%w: email_list", ErrMissingField)
	}

	p := &Profile{
		Kind: KindSingleLogin,
		Target: Account{
			URL:      blob.URL,
			Username: blob.Username,
			Password: blob.Password,
		},
		Recipients: *blob.EmailList,
	}
	if blob.MingleURL != nil && *blob.MingleURL != Disabled {
		p.Kind = KindFederatedLogin
		p.Federated = &Account{
			URL:      *blob.MingleURL,
			Username: blob.MingleUsername,
			Password: blob.MinglePassword,
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Recipients are the notification addresses for alerts. In the secret they
// may be a JSON array or a single comma or semicolon separated string.
type Recipients []string

// UnmarshalJSON accepts either form.
func (r *Recipients) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*r = cleanRecipients(list)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("email_list must be a string or an array of strings: %w", err)
	}
	*r = cleanRecipients(strings.FieldsFunc(s, func(c rune) bool {
		return c == ',' || c == ';'
	}))
	return nil
}

func cleanRecipients(in []string) Recipients {
	out := make(Recipients, 0, len(in))
	for _, addr := range in {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
