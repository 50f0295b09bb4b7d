// Package catalog holds the exams and subjects a test can be generated for.
package catalog

import "mocktest-service/internal/models"

// FullLengthSubjectID selects a mixed-topic test. The generator receives its
// name like any other subject.
const FullLengthSubjectID = "full"

var examTypes = []models.ExamType{
	{ID: "ssc", Name: "SSC CGL/CHSL", Description: "General intelligence, Reasoning, Quant, English", Icon: "🏛️"},
	{ID: "banking", Name: "IBPS/SBI Banking", Description: "Aptitude, Reasoning, Banking Awareness", Icon: "🏦"},
	{ID: "railway", Name: "RRB NTPC/Group D", Description: "General Science, Math, General Awareness", Icon: "🚂"},
	{ID: "upsc", Name: "UPSC CSE (Prelims)", Description: "Civil Services Aptitude, GS Paper I & II", Icon: "📜"},
	{ID: "police", Name: "Police/SI Exams", Description: "Physical, Law, Aptitude, Regional Awareness", Icon: "👮"},
	{ID: "teacher", Name: "TET/CTET Teaching", Description: "Child Pedagogy, Language, Subject Proficiency", Icon: "🎓"},
}

var subjects = []models.Subject{
	{ID: "gk", Name: "General Knowledge", Icon: "🌏"},
	{ID: "reasoning", Name: "Logical Reasoning", Icon: "🧠"},
	{ID: "math", Name: "Mathematics / Quant", Icon: "🔢"},
	{ID: "english", Name: "English Language", Icon: "📖"},
	{ID: "ca", Name: "Current Affairs", Icon: "📰"},
	{ID: FullLengthSubjectID, Name: "Full Length Mock Test", Icon: "📝"},
}

func Exams() []models.ExamType {
	out := make([]models.ExamType, len(examTypes))
	copy(out, examTypes)
	return out
}

func Subjects() []models.Subject {
	out := make([]models.Subject, len(subjects))
	copy(out, subjects)
	return out
}

func FindExam(id string) (models.ExamType, bool) {
	for _, e := range examTypes {
		if e.ID == id {
			return e, true
		}
	}
	return models.ExamType{}, false
}

func FindSubject(id string) (models.Subject, bool) {
	for _, s := range subjects {
		if s.ID == id {
			return s, true
		}
	}
	return models.Subject{}, false
}
