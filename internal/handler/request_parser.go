package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"QualityRadar-App/internal/domain/helper"
	"QualityRadar-App/internal/domain/model"
)

// ValidationError はバリデーションエラーを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// respondValidationError は400でバリデーションエラーを返す
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_parameter",
		"message": err.Error(),
	})
}

// queryList は ?type=a&type=b と ?type=a,b の両方を受け付ける
func queryList(c *gin.Context, key string) []string {
	var values []string
	for _, raw := range c.QueryArray(key) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

// parseFilters はクエリパラメータから絞り込み条件を組み立てる
//
//	q, type, severity, confidence_min, region, from, to (RFC 3339), bbox (min_lng,min_lat,max_lng,max_lat)
func parseFilters(c *gin.Context) (model.FilterState, error) {
	filters := model.DefaultFilters()
	filters.SearchQuery = strings.TrimSpace(c.Query("q"))
	filters.Region = c.Query("region")

	for _, v := range queryList(c, "type") {
		t := model.IssueType(v)
		if !model.IsValidIssueType(t) {
			return filters, &ValidationError{Field: "type", Message: "未知の問題種別です: " + v}
		}
		filters.IssueTypes = append(filters.IssueTypes, t)
	}
	for _, v := range queryList(c, "severity") {
		s := model.Severity(v)
		if !model.IsValidSeverity(s) {
			return filters, &ValidationError{Field: "severity", Message: "未知の深刻度です: " + v}
		}
		filters.Severities = append(filters.Severities, s)
	}

	if v := c.Query("confidence_min"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 100 {
			return filters, &ValidationError{Field: "confidence_min", Message: "0から100の整数で指定してください"}
		}
		filters.ConfidenceMin = n
	}

	from, to := c.Query("from"), c.Query("to")
	if from != "" || to != "" {
		dr := &model.DateRange{}
		var err error
		if from != "" {
			if dr.Start, err = time.Parse(time.RFC3339, from); err != nil {
				return filters, &ValidationError{Field: "from", Message: "RFC 3339形式で指定してください"}
			}
		}
		if to != "" {
			if dr.End, err = time.Parse(time.RFC3339, to); err != nil {
				return filters, &ValidationError{Field: "to", Message: "RFC 3339形式で指定してください"}
			}
		}
		if !dr.Start.IsZero() && !dr.End.IsZero() && dr.End.Before(dr.Start) {
			return filters, &ValidationError{Field: "to", Message: "終了日時は開始日時以降にしてください"}
		}
		filters.DateRange = dr
	}

	if v := c.Query("bbox"); v != "" {
		bounds, err := parseBBox(v)
		if err != nil {
			return filters, err
		}
		filters.Bounds = &bounds
	}
	return filters, nil
}

// parseBBox は "min_lng,min_lat,max_lng,max_lat" 形式の境界ボックスを解析する
func parseBBox(raw string) (model.Bounds, error) {
	coords := strings.Split(raw, ",")
	if len(coords) != 4 {
		return model.Bounds{}, &ValidationError{Field: "bbox", Message: "min_lng,min_lat,max_lng,max_lat の4つの値が必要です"}
	}

	values := make([]float64, 4)
	for i, s := range coords {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return model.Bounds{}, &ValidationError{Field: "bbox", Message: "数値ではない値が含まれています: " + s}
		}
		values[i] = v
	}

	bounds := model.Bounds{West: values[0], South: values[1], East: values[2], North: values[3]}
	if !helper.IsValidCoordinates(model.LatLng{Lat: bounds.South, Lng: bounds.West}) ||
		!helper.IsValidCoordinates(model.LatLng{Lat: bounds.North, Lng: bounds.East}) {
		return model.Bounds{}, &ValidationError{Field: "bbox", Message: "緯度は-90から90、経度は-180から180の範囲で指定してください"}
	}
	if bounds.South > bounds.North || bounds.West > bounds.East {
		return model.Bounds{}, &ValidationError{Field: "bbox", Message: "最小値が最大値を超えています"}
	}
	return bounds, nil
}

// parseIntQuery は整数のクエリパラメータを範囲付きで解析する。未指定ならdefを返す
func parseIntQuery(c *gin.Context, key string, def, lo, hi int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, &ValidationError{
			Field:   key,
			Message: "範囲 " + strconv.Itoa(lo) + "〜" + strconv.Itoa(hi) + " の整数で指定してください",
		}
	}
	return n, nil
}
