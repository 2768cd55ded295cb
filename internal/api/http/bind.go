package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/worklog-app/worklog-backend/internal/common"
)

var registerTagNames sync.Once

// BindJSON decodes the request body into dst and runs its binding rules.
// Rule violations come back as a *common.ValidationError keyed by JSON name.
func BindJSON(c *gin.Context, dst any) error {
	registerTagNames.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(jsonFieldName)
		}
	})

	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := &common.ValidationError{}
		for _, fe := range verrs {
			out.Add(fe.Field(), fieldMessage(fe))
		}
		return out
	}
	return common.Invalid("body", "Invalid JSON body")
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

func fieldMessage(fe validator.FieldError) string {
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return "Please include a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

// humanize turns "taskId" into "Task ID" and "startTime" into "Start time".
func humanize(field string) string {
	if field == "" {
		return field
	}
	var words []string
	start := 0
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' {
			words = append(words, field[start:i])
			start = i
		}
	}
	words = append(words, field[start:])

	for i, w := range words {
		lw := strings.ToLower(w)
		switch {
		case lw == "id":
			words[i] = "ID"
		case i == 0:
			words[i] = strings.ToUpper(lw[:1]) + lw[1:]
		default:
			words[i] = lw
		}
	}
	return strings.Join(words, " ")
}
