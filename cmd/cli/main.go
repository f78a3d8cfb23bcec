package main

import (
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"

	"hrportal/internal/database"
	"hrportal/pkg/utils"
)

const apiBaseURL = "http://localhost:3000/api"

var bearerToken string

type ResponseError struct {
	Message string `json:"message"`
}

var apiServiceBase = func() *resty.Client {
	return resty.New().
		SetBaseURL(apiBaseURL).
		SetHeader("Accept", "application/json").
		SetAuthToken(bearerToken).
		SetError(&ResponseError{}).
		OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
			if resp.StatusCode() >= 400 {
				return fmt.Errorf(resp.Error().(*ResponseError).Message)
			}

			return nil
		})
}

var rootCmd = &cobra.Command{
	Use:   "hrportal",
	Short: "HR Portal CLI",
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create <username> <email>",
	Short: "Create a new active account",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		username := args[0]
		email := args[1]
		password := utils.GenerateRandomString(12)

		resp, err := apiServiceBase().R().
			SetBody(map[string]string{
				"username":  username,
				"email":     email,
				"full_name": username,
				"password":  password,
			}).
			SetResult(&database.Account{}).
			Post("/admin/accounts")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		account := resp.Result().(*database.Account)

		fmt.Println("Account ID :", account.ID)
		fmt.Println("Username   :", account.Username)
		fmt.Println("Email      :", account.Email)
		fmt.Println("Role       :", account.Role)
		fmt.Println("Password   :", password)
	},
}

var accountApproveCmd = &cobra.Command{
	Use:   "approve <account_id>",
	Short: "Approve a pending account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		accountID := args[0]

		resp, err := apiServiceBase().R().
			SetResult(&database.Account{}).
			Post(fmt.Sprintf("/admin/accounts/%s/approve", accountID))

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		account := resp.Result().(*database.Account)

		fmt.Println("Account ID :", account.ID)
		fmt.Println("Status     :", account.Status)
	},
}

var accountResetPasswordCmd = &cobra.Command{
	Use:   "reset-password <account_id>",
	Short: "Reset account password",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		accountID := args[0]

		type resetResult struct {
			ID       string `json:"id"`
			Password string `json:"password"`
		}

		resp, err := apiServiceBase().R().
			SetResult(&resetResult{}).
			Post(fmt.Sprintf("/admin/accounts/%s/reset-password", accountID))

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		result := resp.Result().(*resetResult)

		fmt.Println("Account ID :", result.ID)
		fmt.Println("Password   :", result.Password)
	},
}

var accountProfileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Get own account profile",
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := apiServiceBase().R().
			SetResult(&database.Account{}).
			Get("/auth/me")

		if err != nil {
			fmt.Println("Error:", err)
			return
		}

		account := resp.Result().(*database.Account)

		fmt.Println("Account ID :", account.ID)
		fmt.Println("Username   :", account.Username)
		fmt.Println("Email      :", account.Email)
		fmt.Println("Role       :", account.Role)
		fmt.Println("Status     :", account.Status)
	},
}

func main() {
	accountCmd.AddCommand(accountCreateCmd)
	accountCmd.AddCommand(accountApproveCmd)
	accountCmd.AddCommand(accountResetPasswordCmd)
	accountCmd.AddCommand(accountProfileCmd)
	rootCmd.AddCommand(accountCmd)

	rootCmd.PersistentFlags().StringVarP(&bearerToken, "token", "t", "", "Bearer token")
	rootCmd.MarkPersistentFlagRequired("token")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
