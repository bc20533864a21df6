package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/services"
)

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push <file|->",
		Short: "Save a document to the store",
		Long: `Create a new slide deck from a document, or update an existing one
when --id is given. The title comes from the metadata block.

Example:
  slidedeck push talk.md
  slidedeck push talk.md --id 12 --access public`,
		Args: cobra.ExactArgs(1),
		RunE: runPush,
	}

	cmd.Flags().Int64("id", 0, "Update this document instead of creating one")
	cmd.Flags().String("access", "", "Access level for the document: public or private (overrides config)")

	return cmd
}

func runPush(cmd *cobra.Command, args []string) error {
	text, err := readDocument(cmd, args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	session := a.newSession()
	defer session.Close()

	id, _ := cmd.Flags().GetInt64("id")
	if id < 0 {
		return fmt.Errorf("%w: invalid document id %d", entities.ErrValidation, id)
	}
	if id > 0 {
		if err := session.Open(cmd.Context(), entities.DocumentID(id)); err != nil {
			return err
		}
	}

	session.SetText(text)
	if err := session.Save(cmd.Context()); err != nil {
		return err
	}

	saved, _ := session.ID()
	fmt.Fprintln(a.out, saved)
	return nil
}

func newPullCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull <id>",
		Short: "Print the raw text of a stored document",
		Args:  cobra.ExactArgs(1),
		RunE:  runPull,
	}

	cmd.Flags().StringP("output", "o", "", "Write to this file instead of standard output")

	return cmd
}

func runPull(cmd *cobra.Command, args []string) error {
	id, err := documentIDArg(args, 0)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	session := a.newSession()
	defer session.Close()

	if err := session.Open(cmd.Context(), id); err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, err := io.WriteString(a.out, session.Text())
		return err
	}

	if err := os.WriteFile(output, []byte(session.Text()), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	return nil
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List one page of stored documents",
		Args:    cobra.NoArgs,
		RunE:    runList,
	}

	cmd.Flags().Int("page", 1, "Page to show, starting at 1")
	cmd.Flags().Int("page-size", 0, "Documents per page (overrides config)")
	cmd.Flags().Bool("json", false, "Print the page as JSON")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	page, _ := cmd.Flags().GetInt("page")
	if page < 1 {
		return fmt.Errorf("%w: page must be at least 1, got %d", entities.ErrValidation, page)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	collection := a.newCollection()
	defer collection.Close()
	if err := collection.LoadPage(cmd.Context(), page-1); err != nil {
		return err
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	return writePage(a.out, collection.State(), asJSON)
}

// writePage prints a listing as a table or as the store's JSON shape
func writePage(w io.Writer, state services.PageState, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entities.Page{Items: state.Items, TotalPages: state.PageCount})
	}

	if len(state.Items) == 0 {
		fmt.Fprintln(w, "No slide decks found")
	} else {
		table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(table, "ID\tTITLE\tAUTHOR\tACCESS\tUPDATED")
		for _, item := range state.Items {
			fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\n",
				item.ID, item.Title, item.Author, item.AccessLevel, formatTime(item.UpdatedAt))
		}
		if err := table.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "Page %d of %d\n", state.PageIndex+1, state.PageCount)
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored document after confirmation",
		Args:    cobra.ExactArgs(1),
		RunE:    runRemove,
	}

	cmd.Flags().BoolP("yes", "y", false, "Delete without asking for confirmation")

	return cmd
}

func runRemove(cmd *cobra.Command, args []string) error {
	id, err := documentIDArg(args, 0)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	collection := a.newCollection()
	defer collection.Close()
	collection.RequestDelete(id)

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes && !confirm(cmd.InOrStdin(), a.errOut, fmt.Sprintf("Delete slide deck #%s?", id)) {
		collection.CancelDelete()
		fmt.Fprintln(a.errOut, "Cancelled")
		return nil
	}

	return collection.ConfirmDelete(cmd.Context())
}

// confirm asks a yes/no question; anything but y or yes declines
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func newCloneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clone <id>",
		Short: "Copy a stored document",
		Args:  cobra.ExactArgs(1),
		RunE:  runClone,
	}
}

func runClone(cmd *cobra.Command, args []string) error {
	id, err := documentIDArg(args, 0)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	collection := a.newCollection()
	defer collection.Close()

	summary, err := collection.Clone(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, summary.ID)
	return nil
}
