package user

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tfkr-ae/taxreg"
	"github.com/tfkr-ae/taxreg/wire"
)

var (
	loginCmd = &cobra.Command{
		Use:   "login [username] [password]",
		Short: "Check credentials against the registry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return deliver(client.SendRequest(&wire.LoginRequest{
				Username: args[0],
				Password: args[1],
			}))
		},
	}
	registerCmd = &cobra.Command{
		Use:   "register [username] [password]",
		Short: "Register a new registry account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return deliver(client.SendRequest(&wire.RegisterUserRequest{
				Username: args[0],
				Password: args[1],
			}))
		},
	}
	saveCmd = &cobra.Command{
		Use:   "save [national_id]",
		Short: "Save a new taxpayer record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &wire.SaveNewUserRequest{NationalID: args[0]}
			req.FirstName, _ = cmd.Flags().GetString("first-name")
			req.LastName, _ = cmd.Flags().GetString("last-name")
			req.DateOfBirth, _ = cmd.Flags().GetString("date-of-birth")
			req.Gender, _ = cmd.Flags().GetString("gender")
			req.AddressCountry, _ = cmd.Flags().GetString("country")
			req.AddressZipCode, _ = cmd.Flags().GetString("zip-code")
			req.AddressCity, _ = cmd.Flags().GetString("city")
			req.AddressStreet, _ = cmd.Flags().GetString("street")
			req.AddressHouseNumber, _ = cmd.Flags().GetString("house-number")
			req.PhoneCountryCode, _ = cmd.Flags().GetString("phone-country-code")
			req.PhoneNumber, _ = cmd.Flags().GetString("phone-number")
			req.MaritalStatus, _ = cmd.Flags().GetString("marital-status")
			return deliver(client.SendRequest(req))
		},
	}
	findCmd = &cobra.Command{
		Use:   "find",
		Short: "Search taxpayers matching any of the supplied fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &wire.FindUserRequest{}
			req.NationalID, _ = cmd.Flags().GetString("national-id")
			req.FirstName, _ = cmd.Flags().GetString("first-name")
			req.LastName, _ = cmd.Flags().GetString("last-name")
			req.DateOfBirth, _ = cmd.Flags().GetString("date-of-birth")
			return deliver(client.SendRequest(req))
		},
	}
	retrieveCmd = &cobra.Command{
		Use:   "retrieve [national_id]",
		Short: "Retrieve the full record for a national ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return deliver(client.SendRequest(&wire.RetrieveUserDetailsRequest{
				NationalID: args[0],
			}))
		},
	}
)

func init() {
	saveCmd.Flags().String("first-name", "", "First name")
	saveCmd.Flags().String("last-name", "", "Last name")
	saveCmd.Flags().String("date-of-birth", "", "Date of birth (DD.MM.YYYY)")
	saveCmd.Flags().String("gender", "", "Gender")
	saveCmd.Flags().String("country", "", "Address country")
	saveCmd.Flags().String("zip-code", "", "Address zip code")
	saveCmd.Flags().String("city", "", "Address city")
	saveCmd.Flags().String("street", "", "Address street")
	saveCmd.Flags().String("house-number", "", "Address house number")
	saveCmd.Flags().String("phone-country-code", "", "Phone country code")
	saveCmd.Flags().String("phone-number", "", "Phone number")
	saveCmd.Flags().String("marital-status", "", "Marital status")

	findCmd.Flags().String("national-id", "", "National ID to match")
	findCmd.Flags().String("first-name", "", "First name to match")
	findCmd.Flags().String("last-name", "", "Last name to match")
	findCmd.Flags().String("date-of-birth", "", "Date of birth to match (DD.MM.YYYY)")
}

// deliver prints the server response or turns a transport error code into a
// command error.
func deliver(result taxreg.Result) error {
	switch result.Error {
	case taxreg.NoError:
		fmt.Println(string(result.Response))
		return nil
	case taxreg.ClientBusy:
		return fmt.Errorf("client busy: another request is still in flight")
	case taxreg.ConnectionError:
		return fmt.Errorf("connection error: could not reach the server")
	default:
		return fmt.Errorf("request failed: %s", result.Error)
	}
}
