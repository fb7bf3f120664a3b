package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careerpoint/institute-api/internal/repository"
)

// Date binds JSON date fields in "2006-01-02" form. RFC3339 timestamps are
// accepted too so API clients sending full timestamps keep working.
type Date struct {
	time.Time
}

// UnmarshalJSON parses a JSON string into a Date
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON renders the date back in "2006-01-02" form
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// TimePtr returns a *time.Time, nil for the zero date
func (d *Date) TimePtr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// pathID parses the :id (or named) path parameter
func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// uintQuery parses an optional unsigned query parameter
func uintQuery(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}

// listQuery extracts pagination, search and sort parameters
func listQuery(c *gin.Context) repository.ListQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	return repository.NewListQuery(
		page,
		perPage,
		c.Query("search"),
		c.Query("sort_by"),
		c.DefaultQuery("sort_dir", "asc"),
	)
}

// dateRangeQuery parses optional from/to query parameters; to is exclusive
// and defaults are a wide-open range.
func dateRangeQuery(c *gin.Context) (time.Time, time.Time, error) {
	from := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Now().AddDate(0, 0, 1)

	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, err
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return from, to, err
		}
		// inclusive end date
		to = t.AddDate(0, 0, 1)
	}
	return from, to, nil
}
