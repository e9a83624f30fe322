// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/kvcachego/internal/meta"
	"github.com/staranto/kvcachego/internal/output"
	"github.com/staranto/kvcachego/internal/school"
)

// SchoolListCommandAction prints every document in the school collection.
func SchoolListCommandAction(ctx context.Context, cmd *cli.Command) error {
	coll, closer, err := openCollection(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	docs, err := school.ListAll(ctx, coll)
	if err != nil {
		return fmt.Errorf("failed to list schools: %w", err)
	}

	rows := make([]map[string]interface{}, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, d)
	}

	w := writer(cmd)
	return output.RenderDocuments(w, rows, output.Options{
		Format: cmd.String("output"),
		Titles: cmd.Bool("titles"),
		Color:  useColor(cmd, w),
	})
}

// SchoolInsertCommandAction inserts one document built from FIELD=VALUE
// arguments and prints its id. Arguments are validated before connecting.
func SchoolInsertCommandAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		return errors.New("insert needs at least one FIELD=VALUE argument")
	}
	fields, err := school.ParseFields(cmd.Args().Slice())
	if err != nil {
		return err
	}

	coll, closer, err := openCollection(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	id, err := school.InsertSchool(ctx, coll, fields)
	if err != nil {
		return fmt.Errorf("failed to insert school: %w", err)
	}
	fmt.Fprintln(writer(cmd), output.InterfaceToString(id))
	return nil
}

// SchoolCommandBuilder constructs "school" and its list and insert
// subcommands.
func SchoolCommandBuilder(m meta.Meta) *cli.Command {
	list := (&CommandBuilder{
		Name:      "list",
		Usage:     "list every school document",
		UsageText: "kvcache school list [options]",
		Meta:      m,
		Flags:     NewOutputFlags(m, "school"),
		Action:    SchoolListCommandAction,
	}).Build()

	insert := (&CommandBuilder{
		Name:      "insert",
		Usage:     "insert a school document",
		UsageText: "kvcache school insert FIELD=VALUE...",
		Meta:      m,
		Action:    SchoolInsertCommandAction,
	}).Build()

	return (&CommandBuilder{
		Name:      "school",
		Usage:     "school documents in mongodb",
		UsageText: "kvcache school [list|insert] [options]",
		Meta:      m,
		Commands:  []*cli.Command{list, insert},
	}).Build()
}
