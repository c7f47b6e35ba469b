package server

import (
	"net/http"

	"github.com/Freeeeeet/skill_swap/internal/model"
	"github.com/Freeeeeet/skill_swap/internal/service"
	"github.com/gin-gonic/gin"
)

type offerSkillBody struct {
	SkillID               int64                  `json:"skill_id"`
	ProficiencyLevel      model.ProficiencyLevel `json:"proficiency_level"`
	Description           string                 `json:"description"`
	YearsOfExperience     int                    `json:"years_of_experience"`
	TeachingPreference    model.Preference       `json:"teaching_preference"`
	MaxStudentsPerSession int                    `json:"max_students_per_session"`
}

type desireSkillBody struct {
	SkillID            int64                  `json:"skill_id"`
	Urgency            model.Urgency          `json:"urgency"`
	Description        string                 `json:"description"`
	CurrentLevel       model.ProficiencyLevel `json:"current_level"`
	TargetLevel        model.ProficiencyLevel `json:"target_level"`
	LearningPreference model.Preference       `json:"learning_preference"`
}

// ============ Каталог ============

func (s *Server) handleListCategories(c *gin.Context) {
	categories, err := s.services.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(categories))
}

func (s *Server) handleListSkills(c *gin.Context) {
	categoryID, ok := s.pathID(c, "category")
	if !ok {
		return
	}
	skills, err := s.services.Catalog.ListSkills(c.Request.Context(), categoryID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(skills))
}

func (s *Server) handleSearchSkills(c *gin.Context) {
	skills, err := s.services.Catalog.SearchSkills(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(skills))
}

func (s *Server) handleGetSkill(c *gin.Context) {
	id, ok := s.pathID(c, "skill")
	if !ok {
		return
	}
	skill, err := s.services.Catalog.GetSkill(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, skill)
}

// ============ Навыки пользователя ============

func (s *Server) handleListOffered(c *gin.Context) {
	offered, err := s.services.Catalog.ListOffered(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(offered))
}

func (s *Server) handleOfferSkill(c *gin.Context) {
	var body offerSkillBody
	if !s.bindJSON(c, &body) {
		return
	}
	offered, err := s.services.Catalog.OfferSkill(c.Request.Context(), currentUserID(c), service.OfferSkillInput{
		SkillID:               body.SkillID,
		ProficiencyLevel:      body.ProficiencyLevel,
		Description:           body.Description,
		YearsOfExperience:     body.YearsOfExperience,
		TeachingPreference:    body.TeachingPreference,
		MaxStudentsPerSession: body.MaxStudentsPerSession,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, offered)
}

func (s *Server) handleToggleOffered(c *gin.Context) {
	id, ok := s.pathID(c, "offered skill")
	if !ok {
		return
	}
	active, err := s.services.Catalog.ToggleOffered(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_active": active})
}

func (s *Server) handleDeleteOffered(c *gin.Context) {
	id, ok := s.pathID(c, "offered skill")
	if !ok {
		return
	}
	if err := s.services.Catalog.DeleteOffered(c.Request.Context(), currentUserID(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListDesired(c *gin.Context) {
	desired, err := s.services.Catalog.ListDesired(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listOf(desired))
}

func (s *Server) handleDesireSkill(c *gin.Context) {
	var body desireSkillBody
	if !s.bindJSON(c, &body) {
		return
	}
	desired, err := s.services.Catalog.DesireSkill(c.Request.Context(), currentUserID(c), service.DesireSkillInput{
		SkillID:            body.SkillID,
		Urgency:            body.Urgency,
		Description:        body.Description,
		CurrentLevel:       body.CurrentLevel,
		TargetLevel:        body.TargetLevel,
		LearningPreference: body.LearningPreference,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, desired)
}

func (s *Server) handleToggleDesired(c *gin.Context) {
	id, ok := s.pathID(c, "desired skill")
	if !ok {
		return
	}
	active, err := s.services.Catalog.ToggleDesired(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_active": active})
}

func (s *Server) handleDeleteDesired(c *gin.Context) {
	id, ok := s.pathID(c, "desired skill")
	if !ok {
		return
	}
	if err := s.services.Catalog.DeleteDesired(c.Request.Context(), currentUserID(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
