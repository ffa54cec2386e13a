// Package firebase is the hosted backend: Firebase Authentication for
// identity and Firestore for the registrations and event-info collections.
package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Collection names shared with the hosted web client.
const (
	RegistrationsCollection = "registrations"
	EventInfoCollection     = "event_info"
	eventInfoDocID          = "current"
)

// Client holds the Firebase app and the service clients derived from it.
type Client struct {
	app       *fb.App
	Firestore *firestore.Client
	Auth      *auth.Client
}

// Open initializes the Firebase app for projectID. An empty credentialsFile
// uses Application Default Credentials.
// PRE: projectID is non-empty
// POST: Firestore and Auth clients are ready; Close releases them
func Open(ctx context.Context, projectID, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := fb.NewApp(ctx, &fb.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	store, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting firestore client: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("getting auth client: %w", err)
	}
	return &Client{app: app, Firestore: store, Auth: authClient}, nil
}

// Close releases the Firestore connection.
func (c *Client) Close() error {
	return c.Firestore.Close()
}
