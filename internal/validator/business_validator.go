package validator

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/skillswap/swap-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// ValidationError represents a single field failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates a struct against the registered rules
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	var errors ValidationErrors

	err := bv.validate.Struct(s)
	if err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			errors = append(errors, ValidationError{
				Field:   fieldErr.Field(),
				Message: bv.getErrorMessage(fieldErr),
				Value:   fieldErr.Value(),
				Rule:    fieldErr.Tag(),
			})
		}
	}

	return errors
}

// ValidateSwapCreate validates swap request creation beyond struct tags
func (bv *BusinessValidator) ValidateSwapCreate(req *SwapCreateRequest, requesterID uint) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.ReceiverID == requesterID {
		errors = append(errors, ValidationError{
			Field:   "receiver_id",
			Message: "cannot open a swap with yourself",
			Value:   req.ReceiverID,
			Rule:    "business_logic",
		})
	}

	if req.SkillOfferedID == req.SkillRequestedID {
		errors = append(errors, ValidationError{
			Field:   "skill_requested_id",
			Message: "offered and requested skills must differ",
			Value:   req.SkillRequestedID,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateNotificationCreate enforces the platform-broadcast type restriction
func (bv *BusinessValidator) ValidateNotificationCreate(req *NotificationCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.RecipientID == nil {
		allowed := false
		for _, t := range models.PlatformNotificationTypes {
			if req.Type == t {
				allowed = true
				break
			}
		}
		if !allowed {
			errors = append(errors, ValidationError{
				Field:   "type",
				Message: "type not allowed for platform-wide notifications",
				Value:   req.Type,
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Availability windows users can pick from
	bv.validate.RegisterValidation("availability", func(fl validator.FieldLevel) bool {
		value := models.Availability(fl.Field().String())
		return value == models.AvailabilityWeekends || value == models.AvailabilityEvenings
	})

	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		role := models.UserRole(fl.Field().String())
		return role == models.RoleUser || role == models.RoleAdmin
	})

	bv.validate.RegisterValidation("swap_status", func(fl validator.FieldLevel) bool {
		status := models.SwapStatus(fl.Field().String())
		switch status {
		case models.SwapStatusPending, models.SwapStatusAccepted, models.SwapStatusRejected,
			models.SwapStatusCompleted, models.SwapStatusCancelled:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("notification_type", func(fl validator.FieldLevel) bool {
		nType := models.NotificationType(fl.Field().String())
		switch nType {
		case models.NotificationDowntimeAlert, models.NotificationFeatureUpdate,
			models.NotificationSwapRequest, models.NotificationSwapAccepted,
			models.NotificationSwapRejected, models.NotificationSwapCompleted,
			models.NotificationSwapCancelled, models.NotificationFeedbackReceived,
			models.NotificationSystem:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("notification_priority", func(fl validator.FieldLevel) bool {
		priority := models.NotificationPriority(fl.Field().String())
		switch priority {
		case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityUrgent:
			return true
		}
		return false
	})

	// Ratings are whole stars, 1-5
	bv.validate.RegisterValidation("rating_range", func(fl validator.FieldLevel) bool {
		rating := fl.Field().Int()
		return rating >= 1 && rating <= 5
	})

	bv.validate.RegisterValidation("skill_name", func(fl validator.FieldLevel) bool {
		name := strings.TrimSpace(fl.Field().String())
		return len(name) >= 2 && len(name) <= 100
	})

	bv.validate.RegisterValidation("report_type", func(fl validator.FieldLevel) bool {
		rType := models.ReportType(fl.Field().String())
		switch rType {
		case models.ReportUserActivity, models.ReportSwapStats,
			models.ReportFeedbackSummary, models.ReportSkillPopularity:
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("future_date", func(fl validator.FieldLevel) bool {
		field := fl.Field()

		if field.Kind() == reflect.Ptr && field.IsNil() {
			return true
		}

		var value time.Time
		if field.Kind() == reflect.Ptr {
			value = field.Elem().Interface().(time.Time)
		} else {
			value = field.Interface().(time.Time)
		}

		return value.After(time.Now())
	})
}

// getErrorMessage maps common tags to readable messages
func (bv *BusinessValidator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "availability":
		return "must be one of: weekends, evenings"
	case "user_role":
		return "must be one of: user, admin"
	case "swap_status":
		return "is not a valid swap status"
	case "notification_type":
		return "is not a valid notification type"
	case "notification_priority":
		return "must be one of: low, medium, high, urgent"
	case "rating_range":
		return "must be between 1 and 5"
	case "skill_name":
		return "must be between 2 and 100 characters"
	case "report_type":
		return "is not a valid report type"
	case "future_date":
		return "must be in the future"
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}
