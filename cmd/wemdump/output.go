package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/nergy-se/wemportal/pkg/model"
)

type writeFunc func(w io.Writer, devices []*model.Device) error

func writerFor(format string) (writeFunc, error) {
	switch format {
	case "table":
		return writeTable, nil
	case "csv":
		return writeCSV, nil
	case "json":
		return writeJSON, nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

var csvHeader = []string{
	"DeviceId", "DeviceName", "ModuleIndex", "ModuleType", "ModuleName",
	"ParameterId", "ParameterName", "StringValue", "NumericValue", "Unit", "Time",
}

func rowFields(r model.ParameterValueRow) []string {
	return []string{
		strconv.Itoa(r.DeviceID),
		r.DeviceName,
		strconv.Itoa(r.ModuleIndex),
		model.ModuleType(r.ModuleType).String(),
		r.ModuleName,
		r.ParameterID,
		r.ParameterName,
		r.ValueStringValue,
		formatFloat(r.ValueNumericValue),
		r.ValueUnit,
		formatTime(r.ValueTime),
	}
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func writeCSV(w io.Writer, devices []*model.Device) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, d := range devices {
		for _, r := range d.ParameterValues() {
			if err := cw.Write(rowFields(r)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeTable(w io.Writer, devices []*model.Device) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, d := range devices {
		fmt.Fprintf(tw, "device %d %s (%s, %s)\n", d.ID, d.Name, d.DeviceType, d.ConnectionStatus)
		for _, r := range d.ParameterValues() {
			fmt.Fprintf(tw, "  %d/%s\t%s\t%s\t%s\t%s\n",
				r.ModuleIndex, model.ModuleType(r.ModuleType), r.ParameterID, r.ParameterName, r.ValueStringValue, r.ValueUnit)
		}
		for _, category := range model.StatisticTypes {
			s := d.Statistic(category)
			if s == nil || !s.HasData {
				continue
			}
			fmt.Fprintf(tw, "  statistic\t%s\t%s\t%d points\t%s\n", s.Category, s.Granularity, len(s.Points), s.Unit)
		}
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, devices []*model.Device) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(devices)
}
