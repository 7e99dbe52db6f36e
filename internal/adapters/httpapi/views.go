package httpapi

import (
	"time"

	"grupy/internal/application/report"
	"grupy/internal/domain/entities"
)

type notificationView struct {
	ID        string    `json:"id"`
	Kind      string    `json:"type"`
	GroupID   string    `json:"groupId,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
}

func toNotificationView(n entities.Notification) notificationView {
	return notificationView{
		ID:        n.ID,
		Kind:      string(n.Kind),
		GroupID:   n.GroupID,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
		Read:      n.Read,
	}
}

type profileView struct {
	Username        string `json:"username"`
	FeedbackUp      int    `json:"feedbackUp"`
	FeedbackDown    int    `json:"feedbackDown"`
	PositivePercent int    `json:"positivePercent"`
	EventsAttended  int    `json:"eventsAttended"`
	Status          string `json:"status"`
}

func toProfileView(p *entities.Profile) profileView {
	return profileView{
		Username:        p.Username,
		FeedbackUp:      p.FeedbackUp,
		FeedbackDown:    p.FeedbackDown,
		PositivePercent: p.PositivePercent(),
		EventsAttended:  p.EventsAttended,
		Status:          p.Status,
	}
}

type voteRequestView struct {
	Recipient      string `json:"recipient"`
	NotificationID string `json:"notificationId,omitempty"`
}

type groupOutcomeView struct {
	GroupID          string            `json:"groupId"`
	Expired          bool              `json:"expired"`
	AttendanceMarked bool              `json:"attendanceMarked"`
	VoteRequests     []voteRequestView `json:"voteRequests,omitempty"`
	DataQualityError string            `json:"dataQualityError,omitempty"`
	Errors           []string          `json:"errors,omitempty"`
}

type reportView struct {
	StartedAt        time.Time          `json:"startedAt"`
	FinishedAt       time.Time          `json:"finishedAt"`
	AttendanceMarked int                `json:"attendanceMarked"`
	VoteRequestsSent int                `json:"voteRequestsSent"`
	Failed           int                `json:"failed"`
	Groups           []groupOutcomeView `json:"groups"`
	Error            string             `json:"error,omitempty"`
}

func toReportView(rep report.SweepReport) reportView {
	v := reportView{
		StartedAt:        rep.StartedAt,
		FinishedAt:       rep.FinishedAt,
		AttendanceMarked: rep.AttendanceMarked(),
		VoteRequestsSent: rep.VoteRequestsSent(),
		Failed:           len(rep.Failed()),
		Groups:           make([]groupOutcomeView, 0, len(rep.Groups)),
	}
	for _, g := range rep.Groups {
		gv := groupOutcomeView{
			GroupID:          g.GroupID,
			Expired:          g.Expired,
			AttendanceMarked: g.AttendanceMarked,
		}
		for _, vr := range g.VoteRequests {
			gv.VoteRequests = append(gv.VoteRequests, voteRequestView(vr))
		}
		if g.DataQualityErr != nil {
			gv.DataQualityError = g.DataQualityErr.Error()
		}
		for _, err := range g.Errs {
			gv.Errors = append(gv.Errors, err.Error())
		}
		v.Groups = append(v.Groups, gv)
	}
	return v
}
