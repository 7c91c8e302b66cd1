package main

import (
	"errors"

	"github.com/brizzai/realtor-cli/internal/admin"
	"github.com/brizzai/realtor-cli/internal/auth"
	"github.com/brizzai/realtor-cli/internal/tui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	unansweredOnly bool
	newAnswer      string
	newQuestion    string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Curate the assistant knowledge base",
}

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Manage visitor questions",
}

var questionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List questions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var api admin.API
		stop, err := signedIn(cmd, &api)
		if err != nil {
			return err
		}
		defer stop()

		questions, err := api.ListQuestions(cmd.Context(), unansweredOnly)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), cfg.Output, questions, func() pterm.TableData {
			return questionRows(questions)
		})
	},
}

var questionsAddCmd = &cobra.Command{
	Use:   "add <question>",
	Short: "Add a question, optionally answered",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var api admin.API
		stop, err := signedIn(cmd, &api)
		if err != nil {
			return err
		}
		defer stop()

		var answer *string
		if cmd.Flags().Changed("answer") {
			answer = &newAnswer
		}
		q, err := api.AddQuestion(cmd.Context(), args[0], answer)
		if err != nil {
			return err
		}
		return renderQuestion(cmd, q)
	},
}

var questionsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit the text and/or the answer of a question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var payload admin.UpdateQuestionPayload
		if cmd.Flags().Changed("question") {
			payload.Question = &newQuestion
		}
		if cmd.Flags().Changed("answer") {
			payload.Answer = &newAnswer
		}
		if payload.Question == nil && payload.Answer == nil {
			return errors.New("nothing to update, pass --question and/or --answer")
		}

		var api admin.API
		stop, err := signedIn(cmd, &api)
		if err != nil {
			return err
		}
		defer stop()

		q, err := api.UpdateQuestion(cmd.Context(), args[0], payload)
		if err != nil {
			return err
		}
		return renderQuestion(cmd, q)
	},
}

var questionsAnswerCmd = &cobra.Command{
	Use:   "answer <id> <answer>",
	Short: "Answer a question",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var api admin.API
		stop, err := signedIn(cmd, &api)
		if err != nil {
			return err
		}
		defer stop()

		q, err := api.AnswerQuestion(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return renderQuestion(cmd, q)
	},
}

var questionsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a question",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var api admin.API
		stop, err := signedIn(cmd, &api)
		if err != nil {
			return err
		}
		defer stop()

		if err := api.DeleteQuestion(cmd.Context(), args[0]); err != nil {
			return err
		}
		pterm.Success.Printfln("Deleted question %s", args[0])
		return nil
	},
}

var questionsExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the question bank as YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var api admin.API
		stop, err := signedIn(cmd, &api)
		if err != nil {
			return err
		}
		defer stop()

		questions, err := api.ListQuestions(cmd.Context(), unansweredOnly)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			return admin.ExportQuestions(cmd.OutOrStdout(), questions)
		}
		if err := tui.ExportQuestionsToYamlFile(questions, args[0]); err != nil {
			return err
		}
		pterm.Success.Printfln("Exported %d questions to %s", len(questions), args[0])
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Start a knowledge base ingestion job",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var api admin.API
		stop, err := signedIn(cmd, &api)
		if err != nil {
			return err
		}
		defer stop()

		resp, err := api.SyncKnowledgeBase(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), cfg.Output, resp, func() pterm.TableData {
			rows := pterm.TableData{{"Status", "Job", "Job status", "Created"}}
			if resp.IngestionJob == nil {
				return append(rows, []string{resp.Status, "", "", ""})
			}
			job := resp.IngestionJob
			return append(rows, []string{resp.Status, job.IngestionJobID, job.Status, job.CreatedAt})
		})
	},
}

var visitorsCmd = &cobra.Command{
	Use:   "visitors",
	Short: "List visitors who left contact details",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var api admin.API
		stop, err := signedIn(cmd, &api)
		if err != nil {
			return err
		}
		defer stop()

		visitors, err := api.ListVisitors(cmd.Context())
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), cfg.Output, visitors, func() pterm.TableData {
			rows := pterm.TableData{{"ID", "Name", "Email", "Time"}}
			for _, v := range visitors {
				rows = append(rows, []string{v.VisitorID, v.Name, v.Email, v.Timestamp})
			}
			return rows
		})
	},
}

var adminTUICmd = &cobra.Command{
	Use:   "tui",
	Short: "Answer questions in an interactive console",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var (
			api  admin.API
			gate *auth.Gate
		)
		stop, err := signedIn(cmd, &api, &gate)
		if err != nil {
			return err
		}
		defer stop()

		username, _ := gate.Username(cmd.Context())
		final, err := tui.RunAdmin(api, username)
		if err != nil {
			return err
		}
		if final.Exported() {
			pterm.Info.Printfln("Question bank exported, %s questions loaded.", pterm.LightGreen(len(final.Questions())))
		}
		return nil
	},
}

func init() {
	questionsListCmd.Flags().BoolVar(&unansweredOnly, "unanswered", false, "Only list questions without an answer")
	questionsExportCmd.Flags().BoolVar(&unansweredOnly, "unanswered", false, "Only export questions without an answer")
	questionsAddCmd.Flags().StringVar(&newAnswer, "answer", "", "Answer to store with the question")
	questionsUpdateCmd.Flags().StringVar(&newQuestion, "question", "", "New question text")
	questionsUpdateCmd.Flags().StringVar(&newAnswer, "answer", "", "New answer")

	questionsCmd.AddCommand(questionsListCmd, questionsAddCmd, questionsUpdateCmd, questionsAnswerCmd, questionsDeleteCmd, questionsExportCmd)
	adminCmd.AddCommand(questionsCmd, syncCmd, visitorsCmd, adminTUICmd)
	rootCmd.AddCommand(adminCmd)
}

func questionRows(questions []admin.Question) pterm.TableData {
	rows := pterm.TableData{{"ID", "Question", "Answer", "Synced"}}
	for _, q := range questions {
		answer := pterm.Red("unanswered")
		if q.Answered() {
			answer = truncate(*q.Answer, 60)
		}
		rows = append(rows, []string{q.QuestionID, truncate(q.Question, 60), answer, yesNo(q.Processed)})
	}
	return rows
}

func renderQuestion(cmd *cobra.Command, q *admin.Question) error {
	return render(cmd.OutOrStdout(), cfg.Output, q, func() pterm.TableData {
		return questionRows([]admin.Question{*q})
	})
}
