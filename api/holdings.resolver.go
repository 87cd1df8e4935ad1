package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"holdingsbuilder/internal/app"
	"holdingsbuilder/internal/domain"
	l3_service "holdingsbuilder/internal/service/l3"
	"holdingsbuilder/internal/util"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BuildHoldingsRequest struct {
	EndDate          *string  `json:"endDate"`
	Notional         *float64 `json:"notional"`
	PriceLookup      *string  `json:"priceLookup"`
	FilterExpression *string  `json:"filterExpression"`
	Persist          bool     `json:"persist"`
}

type HoldingResponse struct {
	RebalanceDate string  `json:"tiaoCangDate"`
	SecurityID    string  `json:"secID"`
	Weight        float64 `json:"weight"`
	Industry      string  `json:"INDUSTRY"`
	Filter        int     `json:"filters"`
	Quantity      int64   `json:"quantity"`
}

type RebalanceDateResponse struct {
	Date           string            `json:"date"`
	PriceDate      string            `json:"priceDate"`
	MarketValue    decimal.Decimal   `json:"marketValue"`
	InvestedWeight float64           `json:"investedWeight"`
	Holdings       []HoldingResponse `json:"holdings"`
	Omissions      []domain.Omission `json:"omissions"`
}

type FailureResponse struct {
	Date  string                `json:"date"`
	Stage domain.RebalanceStage `json:"stage"`
	Error string                `json:"error"`
}

type BuildHoldingsResponse struct {
	RunID    uuid.UUID               `json:"runID"`
	Notional decimal.Decimal         `json:"notional"`
	Dates    []RebalanceDateResponse `json:"dates"`
	Failures []FailureResponse       `json:"failures"`
	Profile  json.RawMessage         `json:"profile,omitempty"`
}

func (req BuildHoldingsRequest) toInput() (app.BuildInput, error) {
	in := app.BuildInput{
		PriceLookup:      req.PriceLookup,
		FilterExpression: req.FilterExpression,
		Persist:          req.Persist,
	}
	if req.EndDate != nil {
		endDate, err := util.ParseDate(*req.EndDate)
		if err != nil {
			return in, err
		}
		in.EndDate = &endDate
	}
	if req.Notional != nil {
		in.Notional = util.DecimalPointer(decimal.NewFromFloat(*req.Notional))
	}
	return in, nil
}

func (m ApiHandler) buildHoldings(c *gin.Context) {
	profile, endProfile := domain.NewProfile()
	ctx := domain.NewCtxWithProfile(c.Request.Context(), profile)

	var req BuildHoldingsRequest
	// an empty body builds with the configured defaults
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		returnErrorJsonCode(fmt.Errorf("failed to read request body: %w", err), c, http.StatusBadRequest)
		return
	}
	in, err := req.toInput()
	if err != nil {
		returnErrorJsonCode(err, c, http.StatusBadRequest)
		return
	}

	result, err := m.HoldingsApp.Build(ctx, in)
	if err != nil {
		err = fmt.Errorf("failed to build holdings: %w", err)
		if errors.Is(err, app.ErrInvalidInput) || errors.Is(err, domain.ErrMalformedSchedule) {
			returnErrorJsonCode(err, c, http.StatusBadRequest)
			return
		}
		returnErrorJson(err, c)
		return
	}

	endProfile()
	out := buildHoldingsResponse(*result)
	if profileBytes, err := profile.ToJsonBytes(); err == nil {
		out.Profile = profileBytes
	}

	c.JSON(200, out)
}

func buildHoldingsResponse(result l3_service.BuildResult) BuildHoldingsResponse {
	out := BuildHoldingsResponse{
		RunID:    result.RunID,
		Notional: result.Notional,
		Dates:    []RebalanceDateResponse{},
		Failures: []FailureResponse{},
	}
	for _, d := range result.Dates {
		holdings := []HoldingResponse{}
		for _, h := range d.Holdings() {
			holdings = append(holdings, HoldingResponse{
				RebalanceDate: h.RebalanceDate.Format(time.DateOnly),
				SecurityID:    h.SecurityID,
				Weight:        h.Weight,
				Industry:      h.Industry,
				Filter:        h.Filter,
				Quantity:      h.Quantity,
			})
		}
		omissions := d.Omissions
		if omissions == nil {
			omissions = []domain.Omission{}
		}
		out.Dates = append(out.Dates, RebalanceDateResponse{
			Date:           d.Date.Format(time.DateOnly),
			PriceDate:      d.PriceDate.Format(time.DateOnly),
			MarketValue:    d.MarketValue,
			InvestedWeight: d.InvestedWeight,
			Holdings:       holdings,
			Omissions:      omissions,
		})
	}
	for _, f := range result.Failures {
		out.Failures = append(out.Failures, FailureResponse{
			Date:  f.Date.Format(time.DateOnly),
			Stage: f.Stage,
			Error: f.Err.Error(),
		})
	}

	return out
}
