package dto

import "github.com/codmarsenal/attachments-bot/internal/models"

type SubmitRequest struct {
	WeaponID         *int64          `json:"weapon_id,omitempty"`
	CustomWeaponName string          `json:"custom_weapon_name,omitempty"`
	Mode             models.GameMode `json:"mode"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	ImageFileID      string          `json:"image_file_id,omitempty"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type FileReportRequest struct {
	SubmissionID int64  `json:"submission_id"`
	Reason       string `json:"reason"`
}

type ResolveReportRequest struct {
	Outcome string `json:"outcome"`
	Note    string `json:"note,omitempty"`
}

type BanUserRequest struct {
	Reason string `json:"reason"`
}

type SetSettingRequest struct {
	Value string `json:"value"`
}
