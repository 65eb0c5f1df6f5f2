package user

import "github.com/google/uuid"

// UpdateReportingDTO replaces both reporting links; a nil value clears it.
type UpdateReportingDTO struct {
	ManagerID   *uuid.UUID `json:"manager_id"`
	AppraiserID *uuid.UUID `json:"appraiser_id"`
}
