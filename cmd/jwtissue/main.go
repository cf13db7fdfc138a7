package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/pardot/jwtissuer/issuer"
	"github.com/pardot/jwtissuer/signer"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", os.Args[0], err)
		os.Exit(1)
	}
}

var cmd = cobra.Command{
	Use:   "jwtissue",
	Short: "Issue a signed JWT from a YAML token descriptor",
	Args:  cobra.NoArgs,
	RunE:  run,
}

var ( // flags
	configPath     string
	descriptorPath string
	keyPath        string
	keyID          string
	logLevel       string
	timeout        time.Duration
)

func init() {
	cmd.Flags().StringVar(&configPath, "config", "", "Path to the issuer config YAML")
	cmd.Flags().StringVar(&descriptorPath, "descriptor", "", "Path to the token descriptor YAML")
	cmd.Flags().StringVar(&keyPath, "key", "", "Path to the PEM encoded private signing key")
	cmd.Flags().StringVar(&keyID, "kid", "", "Key ID to set in the token header")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Maximum time to spend issuing the token")
	_ = cmd.MarkFlagRequired("descriptor")
	_ = cmd.MarkFlagRequired("key")
}

func run(cmd *cobra.Command, args []string) error {
	logger := logrus.New()
	lvl, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	logger.SetLevel(lvl)

	cfg := issuer.Config{}
	if configPath != "" {
		b, err := ioutil.ReadFile(configPath)
		if err != nil {
			return errors.Wrap(err, "failed to read config")
		}
		if cfg, err = loadConfig(b); err != nil {
			return err
		}
	}
	cfg.Logger = logger

	db, err := ioutil.ReadFile(descriptorPath)
	if err != nil {
		return errors.Wrap(err, "failed to read descriptor")
	}
	desc, err := loadDescriptor(db)
	if err != nil {
		return err
	}

	kb, err := ioutil.ReadFile(keyPath)
	if err != nil {
		return errors.Wrap(err, "failed to read key")
	}
	key, err := parsePrivateKey(kb)
	if err != nil {
		return err
	}

	cred, pub, err := signer.FromCrypto(key, keyID)
	if err != nil {
		return errors.Wrap(err, "failed to create signing credential")
	}
	keys := signer.NewStatic([]issuer.SigningCredential{cred}, []jose.JSONWebKey{pub})

	iss, err := issuer.New(cfg, keys, signer.NewJWS())
	if err != nil {
		return errors.Wrap(err, "failed to create issuer")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	tok, err := iss.Issue(ctx, desc)
	if err != nil {
		return errors.Wrap(err, "failed to issue token")
	}

	logger.WithFields(logrus.Fields{
		"issuer": desc.Issuer,
		"kind":   desc.Kind.String(),
		"alg":    cred.Algorithm,
	}).Debug("issued token")

	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
