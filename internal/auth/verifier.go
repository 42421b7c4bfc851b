package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// User is the verified caller identity
type User struct {
	UID   string
	Email string
}

// Verifier validates a bearer token against the identity provider
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*User, error)
}

// FirebaseVerifier checks ID tokens with the Firebase Admin SDK
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier builds the Firebase app and auth client. Either
// credentialsFile or serviceAccountJSON must be set.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile, serviceAccountJSON string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	switch {
	case serviceAccountJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	case credentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	default:
		return nil, fmt.Errorf("set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_SERVICE_ACCOUNT_JSON for Firebase Admin")
	}

	var fbConfig *firebase.Config
	if projectID != "" {
		fbConfig = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*User, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	email, _ := token.Claims["email"].(string)
	return &User{UID: token.UID, Email: email}, nil
}
