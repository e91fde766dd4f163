package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/darkclainer/wordmeaning/pkg/meaning"
	"github.com/darkclainer/wordmeaning/pkg/parser"
	"github.com/darkclainer/wordmeaning/pkg/querier"
)

func printJSON(w io.Writer, v interface{}) error {
	s, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return fmt.Errorf("can not marshal result: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", s)
	return err
}

func newLookupCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup word...",
		Short: "Print meanings of words from configured dictionary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validator, err := meaning.NewValidator(a.conf.MaxWords)
			if err != nil {
				return err
			}
			noPassword := ""
			if err := validator.Request(&meaning.Request{Words: args, Password: &noPassword}); err != nil {
				return err
			}
			q, err := a.conf.OpenQuerier(a.logger)
			if err != nil {
				return fmt.Errorf("can not open dictionary: %w", err)
			}
			defer q.Close(cmd.Context())

			results := make([]*meaning.WordResult, 0, len(args))
			for _, word := range args {
				result, err := q.Lookup(cmd.Context(), word)
				if err != nil && !errors.Is(err, querier.ErrNotFound) {
					return fmt.Errorf("lookup of %q failed: %w", word, err)
				}
				results = append(results, result)
			}
			response, err := meaning.Assemble(args, results)
			if err != nil {
				return err
			}
			if err := validator.Response(response); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), response)
		},
	}
}

func newParseCommand(a *app) *cobra.Command {
	var (
		webWord   string
		localPath string
		savePath  string
	)
	command := &cobra.Command{
		Use:   "parse",
		Short: "Parse Wiktionary page from the web or from local html file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var input io.Reader
			switch {
			case webWord != "" && localPath != "":
				return errors.New("both -w and -f can not be specified at the same time")
			case webWord != "":
				pageBytes, err := a.downloadPage(cmd, webWord)
				if err != nil {
					return fmt.Errorf("can not download word %s: %w", webWord, err)
				}
				if savePath != "" {
					if err := os.WriteFile(savePath, pageBytes, 0o660); err != nil {
						return fmt.Errorf("can not save word to %s: %w", savePath, err)
					}
				}
				input = bytes.NewReader(pageBytes)
			case localPath != "":
				file, err := os.Open(localPath)
				if err != nil {
					return fmt.Errorf("can not open file %s: %w", localPath, err)
				}
				defer file.Close()
				input = file
			default:
				return errors.New("you should specify either -w or -f")
			}

			meanings, err := parser.ParseMeaningsHTML(input)
			if err != nil {
				return fmt.Errorf("can not parse word: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), meanings)
		},
	}
	flags := command.Flags()
	flags.StringVarP(&webWord, "word", "w", "", "word that you want to search in the web")
	flags.StringVarP(&localPath, "file", "f", "", "local html file for parsing")
	flags.StringVarP(&savePath, "save", "s", "", "name of file where downloaded page will be saved")
	return command
}

func (a *app) downloadPage(cmd *cobra.Command, word string) ([]byte, error) {
	remoteConf := a.conf.Remote
	remote := querier.NewRemote(nil, nil, &remoteConf)
	defer remote.Close(cmd.Context())
	return remote.Page(cmd.Context(), word)
}

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import file.json",
		Short: "Import {\"word\": {\"meanings\": [...], \"source\": [...]}} entries into local dictionary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readEntries(args[0])
			if err != nil {
				return err
			}
			validator, err := meaning.NewValidator(a.conf.MaxWords)
			if err != nil {
				return err
			}
			for word, entry := range entries {
				if entry == nil {
					return fmt.Errorf("entry %q is empty", word)
				}
				if err := validator.Response(meaning.Response{*entry}); err != nil {
					return fmt.Errorf("entry %q is invalid: %w", word, err)
				}
			}
			local, err := querier.OpenLocal(&a.conf.Local, a.logger)
			if err != nil {
				return err
			}
			defer local.Close(cmd.Context())
			if err := local.Import(cmd.Context(), entries); err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries\n", len(entries))
			return err
		},
	}
}

func readEntries(filePath string) (map[string]*meaning.WordResult, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("can not open file %s: %w", filePath, err)
	}
	defer file.Close()
	var entries map[string]*meaning.WordResult
	if err := json.NewDecoder(file).Decode(&entries); err != nil {
		return nil, fmt.Errorf("can not decode entries: %w", err)
	}
	return entries, nil
}

func newWordsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "words",
		Short: "List words of local dictionary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			local, err := querier.OpenLocal(&a.conf.Local, a.logger)
			if err != nil {
				return err
			}
			defer local.Close(cmd.Context())
			words, err := local.Words(cmd.Context())
			if err != nil {
				return err
			}
			for _, word := range words {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), word); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
