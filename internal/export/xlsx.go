// Package export writes simulation runs and ingredient catalogs as XLSX
// workbooks.
package export

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/brew-cli/internal/catalog"
	"github.com/sells-group/brew-cli/internal/fermentation"
	"github.com/sells-group/brew-cli/internal/model"
)

// Sheet names used by RunWorkbook.
const (
	SummarySheet  = "Summary"
	TimelineSheet = "Timeline"
)

var timelineHeader = []string{
	"Hour", "Phase", "Temperature (C)", "Gravity", "ABV (%)",
	"Ester Score", "Diacetyl Risk", "Event", "Tags",
}

// RunWorkbook builds a workbook with a Summary sheet of headline numbers and a
// Timeline sheet holding entries, one row each. Pass run.Entries() for the
// full log or run.Milestones(n) for a condensed one.
func RunWorkbook(run *fermentation.Run, entries []model.LogEntry) (*xlsx.File, error) {
	f := xlsx.NewFile()

	summary, err := f.AddSheet(SummarySheet)
	if err != nil {
		return nil, eris.Wrap(err, "export: add summary sheet")
	}
	sum := run.Summary()
	addLabel(summary, "Run ID", run.ID)
	addInt(summary, "Days", run.Days)
	addFloat(summary, "Original Gravity", sum.StartGravity, "0.0000")
	addFloat(summary, "Target Gravity", sum.TargetGravity, "0.0000")
	addFloat(summary, "Final Gravity", sum.FinalGravity, "0.0000")
	addFloat(summary, "Final ABV (%)", sum.FinalABV, "0.00")
	addFloat(summary, "Apparent Attenuation", sum.ApparentAttenuation, "0.0%")
	if sum.FinishedHour >= 0 {
		addInt(summary, "Finished Hour", sum.FinishedHour)
	} else {
		addLabel(summary, "Finished Hour", "not finished")
	}

	timeline, err := f.AddSheet(TimelineSheet)
	if err != nil {
		return nil, eris.Wrap(err, "export: add timeline sheet")
	}
	header := timeline.AddRow()
	for _, h := range timelineHeader {
		header.AddCell().SetString(h)
	}
	for _, e := range entries {
		row := timeline.AddRow()
		row.AddCell().SetInt(e.Hour)
		row.AddCell().SetString(string(e.Phase))
		row.AddCell().SetFloatWithFormat(e.Temperature, "0.0")
		row.AddCell().SetFloatWithFormat(e.Gravity, "0.0000")
		row.AddCell().SetFloatWithFormat(e.ABV, "0.00")
		row.AddCell().SetFloatWithFormat(e.EsterScore, "0.0")
		row.AddCell().SetFloatWithFormat(e.DiacetylRisk, "0.0")
		row.AddCell().SetString(e.Event)
		row.AddCell().SetString(strings.Join(e.Tags, ", "))
	}
	return f, nil
}

// WriteRun writes RunWorkbook(run, entries) to w.
func WriteRun(w io.Writer, run *fermentation.Run, entries []model.LogEntry) error {
	f, err := RunWorkbook(run, entries)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "export: write workbook")
}

// SaveRun writes RunWorkbook(run, entries) to path.
func SaveRun(path string, run *fermentation.Run, entries []model.LogEntry) error {
	f, err := RunWorkbook(run, entries)
	if err != nil {
		return err
	}
	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

// SaveCatalog writes d as a workbook with one sheet per ingredient table, in
// the layout catalog.ReadSource reads back.
func SaveCatalog(path string, d *catalog.Data) error {
	f := xlsx.NewFile()
	for _, kind := range []catalog.Kind{catalog.KindGrains, catalog.KindHops, catalog.KindYeasts} {
		sheet, err := f.AddSheet(strings.ToUpper(string(kind[:1])) + string(kind[1:]))
		if err != nil {
			return eris.Wrapf(err, "export: add %s sheet", kind)
		}
		for _, values := range d.Rows(kind) {
			row := sheet.AddRow()
			for _, v := range values {
				row.AddCell().SetString(v)
			}
		}
	}
	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

func addLabel(s *xlsx.Sheet, label, value string) {
	row := s.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetString(value)
}

func addInt(s *xlsx.Sheet, label string, value int) {
	row := s.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetInt(value)
}

func addFloat(s *xlsx.Sheet, label string, value float64, format string) {
	row := s.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetFloatWithFormat(value, format)
}
