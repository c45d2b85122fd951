package services

import (
	"bytes"
	"fmt"
	"or_flow_app_go/models"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// GenerateDelayReport builds a spreadsheet of submitted cases in the given
// window with their scheduled vs. observed times and recorded delay reasons
func GenerateDelayReport(dbConn *gorm.DB, from, to time.Time) (*bytes.Buffer, error) {
	var cases []models.SurgicalCase
	err := dbConn.Where("start_time >= ? AND start_time < ?", from, to).
		Preload("DelayRecords").
		Order("room_name ASC, start_time ASC").
		Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cases for report: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Delay Report"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{
		"Case Number",      // A
		"Room",             // B
		"Procedure",        // C
		"Status",           // D
		"Scheduled Start",  // E
		"Actual Start",     // F
		"Start Late (min)", // G
		"Scheduled End",    // H
		"Actual End",       // I
		"End Late (min)",   // J
		"Start Reason",     // K
		"End Reason",       // L
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	f.SetCellStyle(sheet, "A1", "L1", headerStyle)
	f.SetColWidth(sheet, "A", "L", 18)

	const timeLayout = "2006-01-02 15:04:05"

	for i, c := range cases {
		row := i + 2
		set := func(col int, value interface{}) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			f.SetCellValue(sheet, cell, value)
		}

		set(1, c.CaseNumber)
		set(2, c.RoomName)
		set(3, c.ProcedureName)
		set(4, c.Status)
		set(5, c.StartTime.Format(timeLayout))

		if c.ActualStartTime != nil {
			set(6, c.ActualStartTime.Format(timeLayout))
			set(7, c.ActualStartTime.Sub(c.StartTime).Minutes())
		}

		set(8, c.EndTime.Format(timeLayout))
		if c.ActualEndTime != nil {
			set(9, c.ActualEndTime.Format(timeLayout))
			set(10, c.ActualEndTime.Sub(c.EndTime).Minutes())
		}

		set(11, formatDelayReasons(c.DelayRecords, models.DelayTypeStart))
		set(12, formatDelayReasons(c.DelayRecords, models.DelayTypeEnd))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return buf, nil
}

// formatDelayReasons joins the reasons of one delay type for display
func formatDelayReasons(records []models.DelayRecord, delayType string) string {
	var reasons []string
	for _, r := range records {
		if r.DelayType != delayType {
			continue
		}
		reason := r.ReasonCode
		if r.CustomReasonText != nil && *r.CustomReasonText != "" {
			reason = fmt.Sprintf("%s (%s)", reason, *r.CustomReasonText)
		}
		reasons = append(reasons, reason)
	}
	return strings.Join(reasons, "; ")
}
