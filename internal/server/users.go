package server

import (
	"fmt"
	"net/http"

	"github.com/Freeeeeet/skill_swap/internal/auth"
	"github.com/Freeeeeet/skill_swap/internal/service"
	"github.com/gin-gonic/gin"
)

type profileBody struct {
	UniversityEmail   string `json:"university_email"`
	DepartmentID      *int64 `json:"department_id"`
	BranchID          *int64 `json:"branch_id"`
	Year              string `json:"year"`
	Bio               string `json:"bio"`
	Availability      string `json:"availability"`
	PreferInPerson    bool   `json:"prefer_in_person"`
	PreferOnline      bool   `json:"prefer_online"`
	NotificationEmail bool   `json:"notification_email"`
	NotificationInApp bool   `json:"notification_in_app"`
}

// userSummary не раскрывает email и Telegram в поиске
type userSummary struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) handleSearchUsers(c *gin.Context) {
	users, err := s.services.Users.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	results := make([]userSummary, 0, len(users))
	for _, u := range users {
		results = append(results, userSummary{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName})
	}
	c.JSON(http.StatusOK, listOf(results))
}

func (s *Server) handleListDepartments(c *gin.Context) {
	departments, err := s.services.Users.ListDepartments(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(departments))
}

func (s *Server) handleListBranches(c *gin.Context) {
	id, ok := s.pathID(c, "department")
	if !ok {
		return
	}
	branches, err := s.services.Users.ListBranches(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(branches))
}

func (s *Server) handleGetMe(c *gin.Context) {
	user, err := s.services.Users.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleGetMyProfile(c *gin.Context) {
	profile, err := s.services.Users.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile, "completion_percentage": profile.CompletionPercentage()})
}

func (s *Server) handleGetUserProfile(c *gin.Context) {
	id, ok := s.pathID(c, "user")
	if !ok {
		return
	}
	profile, err := s.services.Users.GetProfile(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	var body profileBody
	if !s.bindJSON(c, &body) {
		return
	}
	profile, err := s.services.Users.UpdateProfile(c.Request.Context(), currentUserID(c), service.ProfileInput{
		UniversityEmail:   body.UniversityEmail,
		DepartmentID:      body.DepartmentID,
		BranchID:          body.BranchID,
		Year:              body.Year,
		Bio:               body.Bio,
		Availability:      body.Availability,
		PreferInPerson:    body.PreferInPerson,
		PreferOnline:      body.PreferOnline,
		NotificationEmail: body.NotificationEmail,
		NotificationInApp: body.NotificationInApp,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// handleTelegramLinkToken выдаёт токен для команды /start <token>
func (s *Server) handleTelegramLinkToken(c *gin.Context) {
	token, err := s.auth.IssueLinkToken(currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}

	resp := gin.H{"token": token, "expires_in": int(auth.LinkTokenTTL.Seconds())}
	if s.opts.BotUsername != "" {
		resp["deep_link"] = fmt.Sprintf("https://t.me/%s?start=%s", s.opts.BotUsername, token)
	}
	c.JSON(http.StatusOK, resp)
}
