package cli

import (
	"context"
	"errors"
	"fmt"

	"fileforge/internal/client"
)

// Signup creates an account and walks straight into email verification.
func (a *App) Signup(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	if _, err := a.store.API().Signup(ctx, email, name, string(password)); err != nil {
		fmt.Fprintln(a.out, "signup failed:", err)
		return err
	}
	fmt.Fprintln(a.out, "Account created. Check your email for a verification code.")
	return a.verifyEmail(ctx, email)
}

// Verify prompts for an email and a verification code.
func (a *App) Verify(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	return a.verifyEmail(ctx, email)
}

// verifyEmail reads a locally validated 6-digit code and submits it exactly
// once. On rejection the loop starts over with a fresh code.
func (a *App) verifyEmail(ctx context.Context, email string) error {
	for {
		code, err := GetOTP(a.reader, a.out)
		if err != nil {
			return err
		}
		_, err = a.store.API().VerifyEmail(ctx, email, code)
		if err == nil {
			fmt.Fprintln(a.out, "Email verified. You can log in now.")
			return nil
		}
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "INVALID_CODE" {
			fmt.Fprintln(a.out, "Code rejected:", apiErr.Message)
			continue
		}
		fmt.Fprintln(a.out, "verification failed:", err)
		return err
	}
}

// Resend asks the server for a new verification code.
func (a *App) Resend(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	if err := a.store.API().ResendCode(ctx, email); err != nil {
		fmt.Fprintln(a.out, "resend failed:", err)
		return err
	}
	fmt.Fprintln(a.out, "If the address is registered, a new code was sent.")
	return nil
}

// Login opens a session; the cookie jar keeps it for subsequent calls.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.store.API().Login(ctx, email, string(password))
	if err != nil {
		fmt.Fprintln(a.out, "login failed:", err)
		return err
	}
	a.user = user
	fmt.Fprintf(a.out, "Logged in as %s\n", user.Email)
	return nil
}

// Logout revokes the session and drops all cached data.
func (a *App) Logout(ctx context.Context) error {
	if err := a.store.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, "logout failed:", err)
		return err
	}
	a.user = nil
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// Me prints the current account.
func (a *App) Me(ctx context.Context) error {
	user, err := a.store.API().Me(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "whoami failed:", err)
		return err
	}
	a.user = user
	fmt.Fprintf(a.out, "%s <%s> verified=%t active=%t\n", user.Name, user.Email, user.Verified, user.Active)
	return nil
}
