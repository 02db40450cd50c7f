package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"bookworm/pkg/api"
	"bookworm/pkg/graph"
	"bookworm/pkg/query"
)

var (
	pathRelations []string

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Run a single query and print the result as JSON",
	}

	queryBookCmd = &cobra.Command{
		Use:   "book ID",
		Short: "Find a book by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("book id", args[0])
			if err != nil {
				return err
			}
			return runQuery(cmd, func(ctx context.Context, e *query.Engine) *query.Result {
				return e.FindBook(ctx, id)
			})
		},
	}

	queryAuthorCmd = &cobra.Command{
		Use:   "author ID",
		Short: "Find the books connected to an author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("author id", args[0])
			if err != nil {
				return err
			}
			return runQuery(cmd, func(ctx context.Context, e *query.Engine) *query.Result {
				return e.FindBooksByAuthor(ctx, id)
			})
		},
	}

	queryReprintsCmd = &cobra.Command{
		Use:   "reprints ID",
		Short: "Find the books reprinted by a publisher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("publisher id", args[0])
			if err != nil {
				return err
			}
			return runQuery(cmd, func(ctx context.Context, e *query.Engine) *query.Result {
				return e.FindBooksReprinted(ctx, id)
			})
		},
	}

	queryWithinCmd = &cobra.Command{
		Use:   "within ID K",
		Short: "Find the books at most K hops from a book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("book id", args[0])
			if err != nil {
				return err
			}
			k, err := strconv.ParseUint(args[1], 10, 16)
			if err != nil {
				return fmt.Errorf("invalid k %q: must be 0..65535", args[1])
			}
			return runQuery(cmd, func(ctx context.Context, e *query.Engine) *query.Result {
				return e.FindBooksKDistance(ctx, id, uint16(k))
			})
		},
	}

	queryPathCmd = &cobra.Command{
		Use:   "path FROM TO",
		Short: "Find a shortest path between two books",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseID("from id", args[0])
			if err != nil {
				return err
			}
			to, err := parseID("to id", args[1])
			if err != nil {
				return err
			}
			rel, err := parseRelations(pathRelations)
			if err != nil {
				return err
			}
			return runQuery(cmd, func(ctx context.Context, e *query.Engine) *query.Result {
				return e.FindShortestPath(ctx, from, to, rel)
			})
		},
	}
)

func init() {
	queryPathCmd.Flags().StringSliceVar(&pathRelations, "relations", nil,
		"Relations to traverse: author, citation, publisher or all (default all)")
	queryCmd.AddCommand(queryBookCmd, queryAuthorCmd, queryReprintsCmd, queryWithinCmd, queryPathCmd)
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, fn func(context.Context, *query.Engine) *query.Result) error {
	l, err := load(cfg)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), api.NewResultResponse(fn(cmd.Context(), l.engine)))
}

func parseID(what, s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return id, nil
}

// parseRelations unions relation names; none means all relations.
func parseRelations(names []string) (graph.Relation, error) {
	if len(names) == 0 {
		return graph.RelAll, nil
	}
	var rel graph.Relation
	for _, name := range names {
		r, err := graph.ParseRelation(name)
		if err != nil {
			return 0, err
		}
		rel |= r
	}
	return rel, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
