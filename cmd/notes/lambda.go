package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var lambdaHandler string

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as an AWS Lambda function behind API Gateway",
	Long: `Run as an AWS Lambda function. By default requests are routed by HTTP
method and resource. With --handler (or NOTES_HANDLER) the function serves a
single operation: create, read, update, delete, searchByUser or
searchByNotebook.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		name := lambdaHandler
		if name == "" {
			name = os.Getenv("NOTES_HANDLER")
		}
		if name == "" {
			a.logger.Info("Starting Lambda handler", zap.String("handler", "dispatch"))
			lambda.Start(a.handler.Dispatch)
			return nil
		}

		handler, ok := a.handler.ByName(name)
		if !ok {
			return fmt.Errorf("unknown handler %q", name)
		}
		a.logger.Info("Starting Lambda handler", zap.String("handler", name))
		lambda.Start(handler)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lambdaCmd)
	lambdaCmd.Flags().StringVar(&lambdaHandler, "handler", "", "Serve a single operation instead of routing")
}
