package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterRules adds the domain rules to gin's binding validator so request
// structs can use `binding:"employee_role"` and `binding:"order_status"`.
func RegisterRules() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding validator is not go-playground/validator")
			return
		}
		err = Register(v)
	})
	return err
}

// Register adds the domain rules to v and makes it report fields by their
// json name.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	if err := v.RegisterValidation("employee_role", func(fl validator.FieldLevel) bool {
		return models.IsValidRole(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		return models.IsValidStatus(fl.Field().String())
	})
}

// FieldErrors flattens binding errors into field -> failed rule, suitable
// for the details of an API error. It returns nil for other errors.
func FieldErrors(err error) map[string]interface{} {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	details := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		details[fe.Field()] = rule
	}
	return details
}
