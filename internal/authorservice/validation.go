package authorservice

import (
	"regexp"

	"github.com/sushihentaime/myblog/internal/common"
)

var (
	UsernameRX = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	// tokens are 16 random bytes in unpadded base32
	TokenRX = regexp.MustCompile(`^[A-Z2-7]{26}$`)
)

var passwordClasses = []struct {
	rx   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`[A-Z]`), "uppercase letter"},
	{regexp.MustCompile(`[a-z]`), "lowercase letter"},
	{regexp.MustCompile(`[0-9]`), "number"},
	{regexp.MustCompile(`[#?!@$%^&*_\-]`), "symbol"},
}

func validateUsername(v *common.Validator, username string) {
	if username == "" {
		v.AddError("username", "must be provided")
		return
	}

	v.Check(v.CheckStringLength(username, 3, 25), "username", "must be between 3 and 25 characters long")
	v.Check(common.Matches(username, UsernameRX), "username", "must only contain letters and numbers")
}

func validateEmail(v *common.Validator, email string) {
	if email == "" {
		v.AddError("email", "must be provided")
		return
	}

	v.Check(len(email) <= 254, "email", "must not be more than 254 bytes long")
	v.Check(common.Matches(email, common.EmailRX), "email", "must be a valid email address")
}

// validatePassword reports the first rule the password breaks. 72 bytes is bcrypt's input limit.
func validatePassword(v *common.Validator, password string) {
	if password == "" {
		v.AddError("password", "must be provided")
		return
	}

	v.Check(len(password) >= 8 && len(password) <= 72, "password", "must be between 8 and 72 bytes long")
	for _, c := range passwordClasses {
		v.Check(c.rx.MatchString(password), "password", "must contain at least one "+c.name)
	}
}

func ValidateToken(v *common.Validator, token string) {
	if token == "" {
		v.AddError("token", "must be provided")
		return
	}

	v.Check(common.Matches(token, TokenRX), "token", "invalid token")
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}
