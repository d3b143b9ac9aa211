package config

import (
	"context"
	"encoding/base64"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

var FirebaseApp *firebase.App

// InitFirebase initializes the Firebase Admin SDK used for staff push notifications.
// Push is optional: without credentials the app stays nil and pushes are skipped.
func InitFirebase() *firebase.App {
	ctx := context.Background()

	var opt option.ClientOption
	if base64Creds := os.Getenv("FIREBASE_CREDENTIALS_BASE64"); base64Creds != "" {
		log.Printf("Using Firebase credentials from base64 environment variable")
		decoded, err := base64.StdEncoding.DecodeString(base64Creds)
		if err != nil {
			log.Printf("Warning: error decoding base64 Firebase credentials: %v, push notifications disabled", err)
			return nil
		}
		opt = option.WithCredentialsJSON(decoded)
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		if _, err := os.Stat(credFile); err != nil {
			log.Printf("Warning: Firebase credentials file %s not readable: %v, push notifications disabled", credFile, err)
			return nil
		}
		log.Printf("Using Firebase credentials file: %s", credFile)
		opt = option.WithCredentialsFile(credFile)
	} else {
		log.Println("Firebase credentials not configured, push notifications disabled")
		return nil
	}

	config := &firebase.Config{
		ProjectID: os.Getenv("FIREBASE_PROJECT_ID"),
	}

	app, err := firebase.NewApp(ctx, config, opt)
	if err != nil {
		log.Printf("Warning: error initializing firebase app: %v, push notifications disabled", err)
		return nil
	}
	FirebaseApp = app
	return app
}
