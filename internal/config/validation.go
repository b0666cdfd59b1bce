package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// Validate checks struct tags plus the rules that span several fields.
func (c *Config) Validate() error {
	return c.validate()
}

// validate skips the tag rules of the named top-level sections.
func (c *Config) validate(except ...string) error {
	v := validator.New()
	var err error
	if len(except) > 0 {
		err = v.StructExcept(c, except...)
	} else {
		err = v.Struct(c)
	}
	if err != nil {
		return err
	}

	if c.Media.Enabled && c.Media.Backend == "s3" {
		s3 := c.Media.S3
		if s3.Bucket == "" || s3.Region == "" {
			return errors.New("media.s3.bucket and media.s3.region are required for the s3 backend")
		}
		if (s3.AccessKeyID == "") != (s3.SecretAccessKey == "") {
			return errors.New("media.s3.access_key_id and media.s3.secret_access_key must be set together")
		}
	}

	for name, task := range c.Scheduler.Tasks {
		if !task.Enabled {
			continue
		}
		if err := validateCron(task.Schedule); err != nil {
			return fmt.Errorf("scheduler.tasks.%s.schedule: %w", name, err)
		}
	}

	return nil
}

// cronParser accepts the same expressions as the scheduler: an optional
// leading seconds field and descriptors such as @daily.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func validateCron(expr string) error {
	if expr == "" {
		return errors.New("schedule is empty")
	}
	_, err := cronParser.Parse(expr)
	return err
}
