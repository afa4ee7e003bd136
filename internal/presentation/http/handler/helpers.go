package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pos-api/internal/presentation/http/middleware"
	"github.com/sangkips/pos-api/pkg/pagination"
)

const dateLayout = "2006-01-02"

// GetSubjectID extracts the authenticated terminal or staff id from the Gin context
func GetSubjectID(c *gin.Context) *uuid.UUID {
	val, exists := c.Get(middleware.SubjectIDKey)
	if !exists {
		return nil
	}
	id, ok := val.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

// uuidParam parses a path parameter, writing a 400 when it is malformed
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUIDQuery parses an optional query parameter. Malformed values are ignored.
func optionalUUIDQuery(c *gin.Context, name string) *uuid.UUID {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

// dateRange parses YYYY-MM-DD bounds. The end date covers the whole day.
func dateRange(start, end string) (*time.Time, *time.Time) {
	var from, to *time.Time
	if start != "" {
		if d, err := time.Parse(dateLayout, start); err == nil {
			from = &d
		}
	}
	if end != "" {
		if d, err := time.Parse(dateLayout, end); err == nil {
			d = d.Add(24*time.Hour - time.Nanosecond)
			to = &d
		}
	}
	return from, to
}

func pageParams(page, perPage int) *pagination.PaginationParams {
	p := &pagination.PaginationParams{Page: page, PerPage: perPage}
	p.Validate()
	return p
}
