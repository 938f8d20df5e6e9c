// Package cli renders termground results for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hyperjump/termground/internal/disambig"
	"github.com/hyperjump/termground/internal/engine"
	"github.com/hyperjump/termground/internal/errs"
	"github.com/hyperjump/termground/internal/models"
	"github.com/hyperjump/termground/internal/search"
	"github.com/hyperjump/termground/pkg/utils"
)

// OutputFormat selects how results are rendered.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is indented JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const nameWidth = 40

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("%w: output %q (want text or json)", errs.ErrValidation, s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// WriteGround writes one grounding response.
func WriteGround(w io.Writer, resp *models.GroundResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "%q: %d matches in %dms\n", resp.Text, resp.Total, resp.QueryTime)
	if len(resp.Matches) == 0 {
		if len(resp.Suggestions) > 0 {
			fmt.Fprintf(w, "did you mean: %s\n", strings.Join(resp.Suggestions, ", "))
		}
		return nil
	}
	return writeMatchTable(w, resp.Matches)
}

// WriteBatch writes the responses of a batch grounding.
func WriteBatch(w io.Writer, resps []models.GroundResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resps)
	}
	tw := table(w)
	fmt.Fprintln(tw, "TEXT\tGROUNDING\tNAME\tSCORE")
	for _, r := range resps {
		if len(r.Matches) == 0 {
			fmt.Fprintf(tw, "%s\t-\t-\t-\n", r.Text)
			continue
		}
		top := r.Matches[0]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f\n", r.Text, top.Grounding(), utils.Truncate(top.Term.EntryName, nameWidth), top.Score)
	}
	return tw.Flush()
}

// WriteMatches writes a ranked match list, such as a disambiguation result.
func WriteMatches(w io.Writer, matches []models.ScoredMatch, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, matches)
	}
	if len(matches) == 0 {
		fmt.Fprintln(w, "no matches")
		return nil
	}
	return writeMatchTable(w, matches)
}

func writeMatchTable(w io.Writer, matches []models.ScoredMatch) error {
	tw := table(w)
	fmt.Fprintln(tw, "#\tGROUNDING\tNAME\tSCORE\tMATCH\tSTATUS\tORGANISM\tDISAMBIGUATION")
	for i, m := range matches {
		org := m.Term.Organism
		if org == "" {
			org = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.4f\t%s\t%s\t%s\t%s\n",
			i+1, m.Grounding(), utils.Truncate(m.Term.EntryName, nameWidth), m.Score,
			m.MatchKind, m.Term.Status, org, verdict(m.Disambiguation))
	}
	return tw.Flush()
}

func verdict(d *models.Disambiguation) string {
	if d == nil {
		return "-"
	}
	return fmt.Sprintf("%s %s %.4f", d.Type, d.Match, d.Score)
}

// WriteTerms writes raw index hits.
func WriteTerms(w io.Writer, terms []models.Term, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, terms)
	}
	if len(terms) == 0 {
		fmt.Fprintln(w, "no terms")
		return nil
	}
	tw := table(w)
	fmt.Fprintln(tw, "TEXT\tGROUNDING\tNAME\tSTATUS\tSOURCE\tORGANISM")
	for _, t := range terms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Text, t.Grounding(), utils.Truncate(t.EntryName, nameWidth), t.Status, t.Source, t.Organism)
	}
	return tw.Flush()
}

// WriteSuggestions writes "did you mean" keys one per line.
func WriteSuggestions(w io.Writer, suggestions []string, format OutputFormat) error {
	if format == OutputJSON {
		if suggestions == nil {
			suggestions = []string{}
		}
		return writeJSON(w, map[string][]string{"suggestions": suggestions})
	}
	for _, s := range suggestions {
		fmt.Fprintln(w, s)
	}
	return nil
}

// WriteSearch writes free-text search results.
func WriteSearch(w io.Writer, resp *search.Response, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "Found %d results in %dms\n", resp.Total, resp.QueryTime)
	if len(resp.Results) == 0 {
		return nil
	}
	tw := table(w)
	fmt.Fprintln(tw, "RANK\tID\tNAME\tSCORE\tKEYWORD\tSEMANTIC")
	for _, r := range resp.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.4f\t%.4f\t%.4f\n",
			r.Rank, r.Entity.ID, utils.Truncate(r.Entity.Name, nameWidth), r.Score, r.KeywordScore, r.SemanticScore)
	}
	return tw.Flush()
}

// WriteModels lists loaded disambiguation models.
func WriteModels(w io.Writer, infos []disambig.ModelInfo, format OutputFormat) error {
	if format == OutputJSON {
		if infos == nil {
			infos = []disambig.ModelInfo{}
		}
		return writeJSON(w, infos)
	}
	if len(infos) == 0 {
		fmt.Fprintln(w, "no disambiguation models loaded")
		return nil
	}
	tw := table(w)
	fmt.Fprintln(tw, "SHORTFORM\tTYPE\tVERSION\tLABELS")
	for _, m := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", m.Shortform, m.Type, m.Version, len(m.Labels))
	}
	return tw.Flush()
}

// WriteStatus summarizes the loaded snapshot.
func WriteStatus(w io.Writer, st engine.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	tw := table(w)
	rows := [][2]string{
		{"snapshot", st.Snapshot},
		{"loaded", st.LoadedAt.Format("2006-01-02 15:04:05")},
		{"terms file", st.TermsPath},
		{"terms", fmt.Sprint(st.Terms)},
		{"keys", fmt.Sprint(st.Keys)},
		{"namespaces", fmt.Sprint(st.Namespaces)},
		{"organisms", fmt.Sprint(st.Organisms)},
		{"stoplist", fmt.Sprint(st.Stoplist)},
		{"models", fmt.Sprint(st.Models)},
		{"semantic search", fmt.Sprint(st.Semantic)},
		{"disk bytes", fmt.Sprint(st.DiskBytes)},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}
