// Package usergroup derives the internal user-group classification from the
// caller's account type and education history.
package usergroup

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/osot/membership-api/internal/domain"
	"github.com/osot/membership-api/internal/ports/out/accountrepo"
	"github.com/osot/membership-api/internal/ports/out/educationrepo"
)

type Service struct {
	education educationrepo.Repository
	log       *zap.Logger
}

func NewService(education educationrepo.Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{education: education, log: log}
}

// Resolve determines the user group for the caller. Affiliates resolve
// unconditionally; accounts dispatch on their account group, consulting the
// matching education table for the OT/OTA branches.
//
// Missing education data and unrecognized account groups soft-fail to Other
// with a warning: the policy favors availability over strictness. An
// out-of-range education category is a hard error, since it means the
// education record itself is corrupt rather than absent.
func (s *Service) Resolve(ctx context.Context, user domain.UserRef, acct accountrepo.Account) (domain.UserGroup, error) {
	if user.IsAffiliate() {
		return domain.UserGroupAffiliate, nil
	}

	switch acct.AccountGroup {
	case domain.AccountGroupOther:
		return domain.UserGroupOther, nil
	case domain.AccountGroupVendorAdvertiser:
		return domain.UserGroupVendorAdvertiser, nil
	case domain.AccountGroupOccupationalTherapist:
		edu, err := s.education.LatestOT(ctx, acct.ID)
		if err != nil {
			return s.fallbackGroup(acct, "ot education lookup", err)
		}
		return mapEducation(edu.Category, domain.UserGroupOT, domain.UserGroupOTStudent, domain.UserGroupOTStudentNewGrad)
	case domain.AccountGroupOccupationalTherapistAssistant:
		edu, err := s.education.LatestOTA(ctx, acct.ID)
		if err != nil {
			return s.fallbackGroup(acct, "ota education lookup", err)
		}
		return mapEducation(edu.Category, domain.UserGroupOTA, domain.UserGroupOTAStudent, domain.UserGroupOTAStudentNewGrad)
	default:
		s.log.Warn("unrecognized account group, falling back to Other",
			zap.String("account_id", string(acct.ID)),
			zap.Int("account_group", int(acct.AccountGroup)),
		)
		return domain.UserGroupOther, nil
	}
}

func (s *Service) fallbackGroup(acct accountrepo.Account, op string, err error) (domain.UserGroup, error) {
	if errors.Is(err, educationrepo.ErrNotFound) {
		s.log.Warn("no education record, falling back to Other",
			zap.String("account_id", string(acct.ID)),
			zap.String("op", op),
		)
		return domain.UserGroupOther, nil
	}
	return 0, err
}

func mapEducation(c domain.EducationCategory, graduated, student, newGrad domain.UserGroup) (domain.UserGroup, error) {
	switch c {
	case domain.EducationGraduated:
		return graduated, nil
	case domain.EducationStudent:
		return student, nil
	case domain.EducationNewGrad:
		return newGrad, nil
	default:
		return 0, &Error{
			Status:  422,
			Code:    "INVALID_EDUCATION_CATEGORY",
			Message: "education record has an invalid category",
			Details: map[string]any{"educationCategory": int(c)},
		}
	}
}
