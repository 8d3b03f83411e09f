/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tomoncle/crudkit/config"
	"github.com/tomoncle/crudkit/database"
	"github.com/tomoncle/crudkit/datasource"
	"github.com/tomoncle/crudkit/todo"
	"github.com/tomoncle/crudkit/utils"
)

// app holds what a subcommand needs once the database is open.
type app struct {
	manager    database.Manager
	ds         *datasource.DataSource
	controller *todo.TodoController
}

func (a *app) close() error { return a.ds.Disconnect() }

func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	manager, err := database.Open(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	ds := database.NewDataSource(cfg.DataSourceName, manager)
	repo, err := todo.NewTodoRepository(ds)
	if err != nil {
		_ = ds.Disconnect()
		return nil, err
	}
	return &app{manager: manager, ds: ds, controller: todo.NewTodoController(repo)}, nil
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		cfg        *config.Config
	)

	// withApp opens the database for the duration of one subcommand.
	var withApp appRunner = func(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.close() }()
			return run(cmd, args, a)
		}
	}

	rootCmd := &cobra.Command{
		Use:           "todo",
		Short:         "Manage todos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			utils.ConfigureLogLevel(loaded.LogLevel)
			cfg = loaded
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "config",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return config.Write(cmd.OutOrStdout(), cfg)
			},
		},
		newMigrateCmd(withApp),
		newSeedCmd(withApp),
		newCreateCmd(withApp),
		newReplaceCmd(withApp),
		newSaveCmd(withApp),
	)
	return rootCmd
}

func newMigrateCmd(withApp appRunner) *cobra.Command {
	var update bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Drop and recreate the todo tables",
		Long:  "Drop and recreate the todo tables. With --update, only missing tables and columns are added.",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			migrate, done := a.ds.Automigrate, "migrated"
			if update {
				migrate, done = a.ds.Autoupdate, "updated"
			}
			if err := migrate(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), done)
			return err
		}),
	}
	cmd.Flags().BoolVarP(&update, "update", "u", false, "Keep existing data and only add what is missing")
	return cmd
}

func newSeedCmd(withApp appRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <dir>",
		Short: "Execute the SQL files of dir in order",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			results, err := database.NewSeeder(a.manager, args[0]).Seed(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), results)
		}),
	}
}

type appRunner func(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error

// todoFlags binds the writable todo fields to flags of cmd.
type todoFlags struct {
	title    string
	desc     string
	complete bool
	address  string
	geo      string
}

func (f *todoFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Todo title (required)")
	cmd.Flags().StringVarP(&f.desc, "desc", "d", "", "Todo description")
	cmd.Flags().BoolVar(&f.complete, "complete", false, "Mark the todo as complete")
	cmd.Flags().StringVar(&f.address, "remind-at-address", "", "Reminder address as address,city,zipcode")
	cmd.Flags().StringVar(&f.geo, "remind-at-geo", "", "Reminder location as latitude,longitude")
	_ = cmd.MarkFlagRequired("title")
}

// build returns a Todo from the flags that were set on cmd.
func (f *todoFlags) build(cmd *cobra.Command) *todo.Todo {
	t := &todo.Todo{Title: f.title}
	if cmd.Flags().Changed("desc") {
		t.Desc = &f.desc
	}
	if cmd.Flags().Changed("complete") {
		t.IsComplete = &f.complete
	}
	if cmd.Flags().Changed("remind-at-address") {
		t.RemindAtAddress = &f.address
	}
	if cmd.Flags().Changed("remind-at-geo") {
		t.RemindAtGeo = &f.geo
	}
	return t
}

func newCreateCmd(withApp appRunner) *cobra.Command {
	flags := &todoFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a todo",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			created, err := a.controller.CreateTodo(cmd.Context(), flags.build(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), created)
		}),
	}
	flags.bind(cmd)
	return cmd
}

func newReplaceCmd(withApp appRunner) *cobra.Command {
	flags := &todoFlags{}
	cmd := &cobra.Command{
		Use:   "replace <id>",
		Short: "Replace the todo stored under id",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			replaced, err := a.controller.ReplaceTodo(cmd.Context(), id, flags.build(cmd))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{"id": id, "replaced": replaced})
		}),
	}
	flags.bind(cmd)
	return cmd
}

func newSaveCmd(withApp appRunner) *cobra.Command {
	var id int64
	flags := &todoFlags{}
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create a todo, or replace it when --id is given",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			t := flags.build(cmd)
			if cmd.Flags().Changed("id") {
				t.ID = &id
			}
			saved, err := a.controller.SaveTodo(cmd.Context(), t)
			if err != nil {
				return err
			}
			if saved == nil {
				return fmt.Errorf("todo %d not found", id)
			}
			return printJSON(cmd.OutOrStdout(), saved)
		}),
	}
	cmd.Flags().Int64Var(&id, "id", 0, "Id of the todo to replace")
	flags.bind(cmd)
	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
