package blogservice

import (
	"fmt"

	"github.com/sushihentaime/myblog/internal/common"
)

func validateRequired(v *common.Validator, value, field string) {
	v.Check(value != "", field, "must be provided")
}

func validateMaxLength(v *common.Validator, value, field string, max int) {
	v.Check(v.CheckStringLength(value, 0, max), field, fmt.Sprintf("must not be more than %d characters long", max))
}

func validateEmail(v *common.Validator, email, field string) {
	validateRequired(v, email, field)
	v.Check(common.Matches(email, common.EmailRX), field, "must be a valid email address")
}

// validateSluggable checks that value yields a non-empty slug.
func validateSluggable(v *common.Validator, value, field string) {
	v.Check(slugify(value) != "", field, "must contain at least one letter or number")
}

func validateTagChoices(v *common.Validator, names []string, choices []string) {
	for _, name := range names {
		if !common.PermittedValue(name, choices...) {
			v.AddError("tags", fmt.Sprintf("select a valid choice, %s is not one of the available choices", name))
			return
		}
	}
}

func validateID(v *common.Validator, id int, field string) {
	v.Check(id != 0, field, "must be provided")
	v.Check(id > 0, field, "must be greater than zero")
}
