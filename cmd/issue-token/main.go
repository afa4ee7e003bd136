// Command issue-token prints a signed bearer token for a register terminal or
// staff member, using the same JWT settings as the API.
//
//	issue-token -name "Register 1" -role terminal
//	issue-token -id 6f1c... -name "Lan" -role manager -ttl 12h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/pkg/logger"
	"github.com/sangkips/pos-api/pkg/utils"
)

func main() {
	id := flag.String("id", "", "subject id (generated when empty)")
	name := flag.String("name", "", "terminal or staff name")
	role := flag.String("role", utils.RoleTerminal, "terminal, staff or manager")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to JWT_EXPIRY_HOURS)")
	flag.Parse()

	cfg := config.Load()
	base := logger.New(cfg.Log.Level, cfg.Log.Format)
	base.SetOutput(os.Stderr) // stdout carries only the token
	log := base.Component("issue-token")

	subject := uuid.New()
	if *id != "" {
		parsed, err := uuid.Parse(*id)
		if err != nil {
			log.WithError(err).Fatal("invalid -id")
		}
		subject = parsed
	}

	expiry := cfg.JWT.ExpiryHours
	if *ttl > 0 {
		expiry = *ttl
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}

	token, err := utils.NewJWTManager(cfg.JWT.Secret, expiry, cfg.JWT.Issuer).GenerateToken(subject, *name, *role)
	if err != nil {
		log.WithError(err).Fatal("failed to issue token")
	}

	log.WithField("subject_id", subject).WithField("role", *role).WithField("expires_in", expiry.String()).Info("token issued")
	fmt.Fprintln(os.Stdout, token)
}
