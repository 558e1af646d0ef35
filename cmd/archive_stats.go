package cmd

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slgero/talk-with-me/archive"
	"github.com/slgero/talk-with-me/cleaner"
	"github.com/slgero/talk-with-me/extract"
	"github.com/slgero/talk-with-me/stats"
)

// NewArchiveStatsCmd builds the archive-stats subcommand: it scans the
// export without building a corpus and reports what a full run would see.
func NewArchiveStatsCmd() *cobra.Command {
	var (
		reportDir string
		topN      int
		minPages  int
	)

	statsCmd := &cobra.Command{
		Use:   "archive-stats [messages folder]",
		Short: "Analyse the message export and show statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]

			fmt.Println("Analyzing archive:", root)

			entries, err := os.ReadDir(root)
			if err != nil {
				return fmt.Errorf("read archive root: %w", err)
			}

			var excludedGroups, excludedService, excludedChats int
			for _, entry := range entries {
				if !entry.IsDir() {
					continue
				}
				name := entry.Name()
				switch {
				case strings.HasPrefix(name, "-"):
					excludedGroups++
				case len(name) < 7:
					excludedService++
				case len(name) == 10:
					excludedChats++
				}
			}

			folders := archive.ListConversations(root, nil)

			var (
				tooShort     int
				totalPages   int
				totalMsgs    int
				failed       int
				labelCounter = make(map[string]int)
				msgCounter   = make(map[string]int)
			)
			labels := cleaner.AttachmentLabels()

			for _, id := range folders {
				folder := filepath.Join(root, id)
				pages, err := archive.ListPages(folder, minPages)
				if err != nil {
					fmt.Printf("  %s: %v\n", id, err)
					failed++
					continue
				}
				if len(pages) == 0 {
					tooShort++
					continue
				}
				totalPages += len(pages)

				raws, err := extract.Extract(folder, pages, extract.ModeStripAuthor)
				if err != nil {
					fmt.Printf("  %s: %v\n", id, err)
					failed++
					continue
				}
				totalMsgs += len(raws)
				msgCounter[id] = len(raws)

				for _, raw := range raws {
					for _, line := range strings.Split(raw.Text, "\n") {
						line = strings.TrimSpace(line)
						for _, label := range labels {
							if line == label {
								labelCounter[label]++
							}
						}
					}
				}
			}

			fmt.Println()
			fmt.Printf("Folders: %d valid, %d groups/applications, %d service, %d group chats\n",
				len(folders), excludedGroups, excludedService, excludedChats)
			fmt.Printf("Conversations below %d pages (would be skipped): %d\n", minPages, tooShort)
			fmt.Printf("Unreadable conversations: %d\n", failed)
			fmt.Printf("Pages: %d, messages: %d\n", totalPages, totalMsgs)

			fmt.Printf("\nTop %d attachment labels:\n", topN)
			stats.PrettyPrintTop(labelCounter, topN)

			fmt.Printf("\nTop %d conversations by message count:\n", topN)
			stats.PrettyPrintTop(msgCounter, topN)

			if reportDir != "" {
				if err := saveCSVReports(map[string]map[string]int{
					"attachment_labels": labelCounter,
					"message_counts":    msgCounter,
				}, reportDir); err != nil {
					return fmt.Errorf("error saving CSV reports: %w", err)
				}
				fmt.Printf("\nReports saved to directory: %s\n", reportDir)
			}

			return nil
		},
	}

	statsCmd.Flags().StringVarP(&reportDir, "output", "o", "", "Output directory for CSV reports")
	statsCmd.Flags().IntVarP(&topN, "top", "t", 10, "Number of top items to display in statistics")
	statsCmd.Flags().IntVar(&minPages, "min-pages", 1, "Count conversations with fewer pages as skipped")

	return statsCmd
}

func saveCSVReports(counters map[string]map[string]int, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for name, counts := range counters {
		filePath := filepath.Join(dir, fmt.Sprintf("report_%s.csv", name))

		file, err := os.Create(filePath)
		if err != nil {
			return err
		}

		writer := csv.NewWriter(file)
		if err := writer.Write([]string{"Value", "Count"}); err != nil {
			file.Close()
			return err
		}

		type pair struct {
			Key   string
			Value int
		}
		var pairs []pair
		for k, v := range counts {
			pairs = append(pairs, pair{k, v})
		}
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].Value != pairs[j].Value {
				return pairs[i].Value > pairs[j].Value
			}
			return pairs[i].Key < pairs[j].Key
		})

		for _, p := range pairs {
			if err := writer.Write([]string{p.Key, strconv.Itoa(p.Value)}); err != nil {
				file.Close()
				return err
			}
		}

		writer.Flush()
		file.Close()

		if err := writer.Error(); err != nil {
			return err
		}
	}

	return nil
}
