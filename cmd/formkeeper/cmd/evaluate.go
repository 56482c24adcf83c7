package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/formkeeper/internal/core/api"
	"github.com/solatis/formkeeper/internal/rules"
	"github.com/solatis/formkeeper/internal/types"
)

var (
	setFile     string
	answersFile string
	questionIDs []string
	withTrace   bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Decide applicability of questions for a set of answers",
	Example: `  formkeeper evaluate --set claim.yaml --answers answers.json
  formkeeper evaluate --set claim.json --answers - --question q-spouse --trace`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		engine, answers, err := loadEngineAndAnswers()
		if err != nil {
			return err
		}

		resp := api.EvaluateResponse{QuestionSetID: engine.Set().ID}
		if len(questionIDs) == 0 {
			resp.Outcomes = engine.EvaluateAll(answers)
		} else {
			for _, id := range questionIDs {
				qid := types.QuestionID(id)
				if _, ok := engine.Set().Question(qid); !ok {
					return fmt.Errorf("%w: %s", types.ErrUnknownQuestion, id)
				}
				resp.Outcomes = append(resp.Outcomes, engine.Evaluate(qid, answers))
			}
		}
		if !withTrace {
			for i := range resp.Outcomes {
				resp.Outcomes[i].Rules = nil
			}
		}
		return writeJSON(cmd.OutOrStdout(), resp)
	},
}

func loadEngineAndAnswers() (*rules.Engine, types.Answers, error) {
	set, err := loadSetFile(setFile)
	if err != nil {
		return nil, nil, err
	}
	compiled, err := rules.Compile(set)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", setFile, err)
	}
	answers := types.Answers{}
	if answersFile != "" {
		if answers, err = loadAnswersFile(answersFile); err != nil {
			return nil, nil, err
		}
	}
	return rules.NewEngine(compiled), answers, nil
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&setFile, "set", "", "question-set document (JSON or YAML)")
	cmd.Flags().StringVar(&answersFile, "answers", "", "answers document, - for stdin")
	_ = cmd.MarkFlagRequired("set")
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	addInputFlags(evaluateCmd)
	evaluateCmd.Flags().StringSliceVar(&questionIDs, "question", nil, "evaluate only these question ids")
	evaluateCmd.Flags().BoolVar(&withTrace, "trace", false, "include per-rule condition traces")
}
