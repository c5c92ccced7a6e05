package exporter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"cordexplorer/internal/charts"
	"cordexplorer/internal/dataprocessing"
	apperrors "cordexplorer/internal/errors"
	"cordexplorer/pkg/contracts/domain"
)

const topWordsInReport = 20

// WriteSummaryMarkdown writes the analysis report as Markdown to out.
func WriteSummaryMarkdown(out io.Writer, report *Report) error {
	md := markdown.NewMarkdown(out)

	md.H1("CORD-19 Metadata Analysis")
	md.PlainText("")
	writeOverview(md, report)
	writeColumns(md, report.Dataset)
	writeYears(md, report)
	writeTopTable(md, "Top Journals", "Journal", report.Aggregates.TopJournals)
	writeSources(md, report)
	writeTopWords(md, report.TopWords)
	writeArtifacts(md, report.Artifacts)

	if err := md.Build(); err != nil {
		return apperrors.NewStorageError("write markdown report", err)
	}
	return nil
}

func writeOverview(md *markdown.Markdown, report *Report) {
	rows := [][]string{{"Input", "`" + report.Input + "`"}}
	if report.Dataset != nil {
		rows = append(rows, []string{"Raw dimensions", shape(report.Dataset.Rows, report.Dataset.Cols)})
	}
	rows = append(rows,
		[]string{"Cleaned dimensions", shape(report.CleanRows, report.CleanCols)},
		[]string{"Dropped (missing title)", strconv.Itoa(report.Dropped.MissingTitle)},
		[]string{"Dropped (missing date)", strconv.Itoa(report.Dropped.MissingDate)},
	)
	md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
	md.PlainText("")

	if report.Dropped.Total() > 0 {
		md.Note(fmt.Sprintf("%d rows were dropped for a missing title or an unparseable publish date.", report.Dropped.Total()))
		md.PlainText("")
	}
}

func writeColumns(md *markdown.Markdown, summary *dataprocessing.DatasetSummary) {
	if summary == nil {
		return
	}
	md.H2("Columns")
	md.PlainText("")

	rows := make([][]string, len(summary.Columns))
	for i, c := range summary.Columns {
		rows[i] = []string{c.Name, string(c.DType), strconv.Itoa(c.Nulls)}
	}
	md.Table(markdown.TableSet{Header: []string{"Column", "Type", "Missing"}, Rows: rows})
	md.PlainText("")
}

func writeYears(md *markdown.Markdown, report *Report) {
	md.H2(charts.YearsTitle)
	md.PlainText("")

	if len(report.Aggregates.Years) == 0 {
		md.PlainText("No publication years available.")
		md.PlainText("")
		return
	}
	md.Table(markdown.TableSet{
		Header: []string{charts.YearsXLabel, charts.YearsYLabel},
		Rows:   YearCountRecords(report.Aggregates.Years),
	})
	md.PlainText("")
}

func writeTopTable(md *markdown.Markdown, title, label string, counts []domain.ValueCount) {
	md.H2(title)
	md.PlainText("")

	if len(counts) == 0 {
		md.PlainText("No values available.")
		md.PlainText("")
		return
	}
	md.Table(markdown.TableSet{Header: []string{label, "Count"}, Rows: ValueCountRecords(counts)})
	md.PlainText("")
}

func writeSources(md *markdown.Markdown, report *Report) {
	writeTopTable(md, "Top Sources", "Source", report.Aggregates.TopSources)
	if len(report.Aggregates.TopSources) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(charts.SourcesTitle),
		piechart.WithShowData(true),
	)
	for _, s := range report.Aggregates.TopSources {
		chart.LabelAndIntValue(s.Value, uint64(s.Count))
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func writeTopWords(md *markdown.Markdown, words []charts.WordFrequency) {
	md.H2("Frequent Title Words")
	md.PlainText("")

	if len(words) == 0 {
		md.PlainText(charts.EmptyCorpusMessage)
		md.PlainText("")
		return
	}
	if len(words) > topWordsInReport {
		words = words[:topWordsInReport]
	}
	rows := make([][]string, len(words))
	for i, w := range words {
		rows[i] = []string{w.Word, strconv.Itoa(w.Count)}
	}
	md.Table(markdown.TableSet{Header: []string{"Word", "Count"}, Rows: rows})
	md.PlainText("")
}

func writeArtifacts(md *markdown.Markdown, files []string) {
	if len(files) == 0 {
		return
	}
	md.H2("Artifacts")
	md.PlainText("")
	md.BulletList(files...)
	md.PlainText("")
}

func shape(rows, cols int) string {
	return fmt.Sprintf("(%d, %d)", rows, cols)
}
