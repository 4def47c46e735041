package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/internal/models"
	"github.com/idaholion/cabinbuddy-48f92664-sub005/pkg/daterange"
	"github.com/shopspring/decimal"
)

// requestValidate checks decoded request bodies. Field errors are reported
// with their JSON names.
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	requestValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := requestValidate.RegisterValidation("isodate", validateDate); err != nil {
		panic(fmt.Sprintf("register isodate validation: %v", err))
	}
}

// validateDate accepts YYYY-MM-DD strings
func validateDate(fl validator.FieldLevel) bool {
	_, err := daterange.Parse(fl.Field().String())
	return err == nil
}

func validateRequest(req any) error {
	err := requestValidate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "isodate":
			msgs = append(msgs, fe.Field()+" must be a YYYY-MM-DD date")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// stayRequest is the date range shared by most request bodies. end_date is the
// checkout day.
type stayRequest struct {
	StartDate    string `json:"start_date" validate:"required,isodate"`
	EndDate      string `json:"end_date" validate:"required,isodate"`
	PropertyName string `json:"property_name" validate:"max=200"`
}

// span converts the validated dates
func (r stayRequest) span() daterange.Range {
	start, _ := daterange.Parse(r.StartDate)
	end, _ := daterange.Parse(r.EndDate)
	return daterange.New(start, end)
}

type checkAvailabilityRequest struct {
	stayRequest
	ExcludeReservationID *int64 `json:"exclude_reservation_id"`
}

type validateDatesRequest struct {
	stayRequest
	FamilyGroup          string `json:"family_group"`
	ExcludeReservationID *int64 `json:"exclude_reservation_id"`
	EditMode             bool   `json:"edit_mode"`
	AdminOverride        bool   `json:"admin_override"`
}

type alternativesRequest struct {
	stayRequest
	DaysToSearch int `json:"days_to_search" validate:"gte=0,lte=90"`
}

type createReservationRequest struct {
	stayRequest
	FamilyGroup        string  `json:"family_group" validate:"required,max=200"`
	GuestCount         int     `json:"guest_count" validate:"gte=0"`
	AdminOverride      bool    `json:"admin_override"`
	TimePeriodNumber   *int    `json:"time_period_number" validate:"omitempty,gte=1"`
	AllocatedStartDate *string `json:"allocated_start_date" validate:"omitempty,isodate"`
	AllocatedEndDate   *string `json:"allocated_end_date" validate:"omitempty,isodate"`
}

type updateDatesRequest struct {
	StartDate     string `json:"start_date" validate:"required,isodate"`
	EndDate       string `json:"end_date" validate:"required,isodate"`
	GuestCount    *int   `json:"guest_count" validate:"omitempty,gte=0"`
	AdminOverride bool   `json:"admin_override"`
}

type occupancyEntryRequest struct {
	Date            string `json:"date" validate:"required,isodate"`
	SourceGuests    int    `json:"sourceGuests" validate:"gte=0"`
	RecipientGuests int    `json:"recipientGuests" validate:"gte=0"`
}

type occupancyRequest struct {
	Entries           []occupancyEntryRequest `json:"entries" validate:"required,min=1,max=366,dive"`
	SkipBillingRecalc bool                    `json:"skip_billing_recalc"`
	ShowNotice        bool                    `json:"show_notice"`
}

type splitRequest struct {
	RecipientGroup string                  `json:"recipient_group" validate:"required,max=200"`
	Entries        []occupancyEntryRequest `json:"entries" validate:"required,min=1,max=366,dive"`
}

type recordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// toOccupancy converts validated entries
func toOccupancy(entries []occupancyEntryRequest) models.DailyOccupancy {
	out := make(models.DailyOccupancy, 0, len(entries))
	for _, e := range entries {
		date, _ := daterange.Parse(e.Date)
		out = append(out, models.DailyOccupancyEntry{
			Date:            date,
			SourceGuests:    e.SourceGuests,
			RecipientGuests: e.RecipientGuests,
		})
	}
	return out
}
