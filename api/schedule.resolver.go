package api

import (
	"errors"
	"fmt"
	"holdingsbuilder/internal/domain"
	"holdingsbuilder/internal/util"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type ScheduleResponse struct {
	End   string   `json:"end"`
	Dates []string `json:"dates"`
}

func (m ApiHandler) schedule(c *gin.Context) {
	var endDate *time.Time
	if s := c.Query("endDate"); s != "" {
		d, err := util.ParseDate(s)
		if err != nil {
			returnErrorJsonCode(err, c, http.StatusBadRequest)
			return
		}
		endDate = &d
	}

	schedule, err := m.HoldingsApp.Schedule(c.Request.Context(), endDate)
	if err != nil {
		err = fmt.Errorf("failed to get schedule: %w", err)
		if errors.Is(err, domain.ErrMalformedSchedule) {
			returnErrorJsonCode(err, c, http.StatusBadRequest)
			return
		}
		returnErrorJson(err, c)
		return
	}

	out := ScheduleResponse{
		End:   schedule.End.Format(time.DateOnly),
		Dates: []string{},
	}
	for _, d := range schedule.Dates {
		out.Dates = append(out.Dates, d.Format(time.DateOnly))
	}

	c.JSON(200, out)
}
