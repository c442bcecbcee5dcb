package api

import "github.com/nhle/auction-console/internal/model"

// Every endpoint wraps its payload in a status flag.

type notificationsResponse struct {
	Status        bool                 `json:"status"`
	Notifications []model.Notification `json:"notifications"`
}

type profilesResponse struct {
	Status   bool                  `json:"status"`
	Profiles []model.ProfileRecord `json:"profiles"`
}

type statusResponse struct {
	Status bool `json:"status"`
}
