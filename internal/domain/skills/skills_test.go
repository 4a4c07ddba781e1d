package skills_test

import (
	"testing"

	"github.com/okian/delega/internal/domain/skills"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given raw skill tags", t, func() {
		Convey("When normalizing", func() {
			So(skills.Normalize("  React  "), ShouldEqual, "react")
			So(skills.Normalize("NODE"), ShouldEqual, "node")
			So(skills.Normalize(""), ShouldEqual, "")
		})
	})
}

func TestMatch(t *testing.T) {
	Convey("Given pairs of skill tags", t, func() {
		Convey("When one contains the other after normalization", func() {
			So(skills.Match("react", "ReactJS"), ShouldBeTrue)
			So(skills.Match("React Native", "react"), ShouldBeTrue)
			So(skills.Match("API", "api"), ShouldBeTrue)
		})

		Convey("When the tags are unrelated", func() {
			So(skills.Match("react", "vue"), ShouldBeFalse)
		})

		Convey("When either tag is empty", func() {
			So(skills.Match("", "react"), ShouldBeFalse)
			So(skills.Match("react", "  "), ShouldBeFalse)
		})
	})
}

func TestCovers(t *testing.T) {
	Convey("Given a worker's skill set", t, func() {
		tags := []string{"React", "Node", "testing"}

		Convey("Then full coverage is detected", func() {
			So(skills.Covers(tags, []string{"react", "node"}), ShouldBeTrue)
		})

		Convey("Then a missing requirement breaks coverage", func() {
			So(skills.Covers(tags, []string{"react", "docker"}), ShouldBeFalse)
		})

		Convey("Then an empty requirement set is always covered", func() {
			So(skills.Covers(nil, nil), ShouldBeTrue)
		})
	})
}

func TestAnyMatch(t *testing.T) {
	Convey("Given tag and requirement sets", t, func() {
		So(skills.AnyMatch([]string{"react", "css"}, []string{"docker", "react"}), ShouldBeTrue)
		So(skills.AnyMatch([]string{"react"}, []string{"docker"}), ShouldBeFalse)
		So(skills.AnyMatch(nil, []string{"docker"}), ShouldBeFalse)
	})
}

func TestAppendMissing(t *testing.T) {
	Convey("Given an existing skill list", t, func() {
		tags := []string{"React", "Node"}

		Convey("When appending a new skill", func() {
			out := skills.AppendMissing(tags, []string{"Docker"})
			So(out, ShouldResemble, []string{"React", "Node", "Docker"})
		})

		Convey("When appending a duplicate that differs only by case", func() {
			out := skills.AppendMissing(tags, []string{"react"})
			So(out, ShouldResemble, []string{"React", "Node"})
		})

		Convey("When one call carries case-variant duplicates", func() {
			out := skills.AppendMissing(tags, []string{"Docker", "docker", "DOCKER"})
			So(out, ShouldResemble, []string{"React", "Node", "Docker"})
		})

		Convey("When appending twice, the second call changes nothing", func() {
			once := skills.AppendMissing(tags, []string{"Docker"})
			twice := skills.AppendMissing(once, []string{"docker"})
			So(twice, ShouldResemble, once)
		})

		Convey("When appending blank tags they are skipped", func() {
			out := skills.AppendMissing(tags, []string{"  "})
			So(out, ShouldResemble, []string{"React", "Node"})
		})
	})
}

func TestDetectRole(t *testing.T) {
	Convey("Given skill sets for role detection", t, func() {
		Convey("Then two frontend and two backend skills yield full-stack", func() {
			So(skills.DetectRole([]string{"react", "css", "node", "api"}), ShouldEqual, "Full-Stack Developer")
		})

		Convey("Then a devops-heavy set yields DevOps", func() {
			So(skills.DetectRole([]string{"docker", "kubernetes", "aws"}), ShouldEqual, "DevOps Engineer")
		})

		Convey("Then a mobile-heavy set yields Mobile", func() {
			So(skills.DetectRole([]string{"flutter", "kotlin"}), ShouldEqual, "Mobile Developer")
		})

		Convey("Then a QA-heavy set yields QA", func() {
			So(skills.DetectRole([]string{"selenium", "cypress"}), ShouldEqual, "QA Engineer")
		})

		Convey("Then frontend-only yields Frontend", func() {
			So(skills.DetectRole([]string{"react", "css"}), ShouldEqual, "Frontend Developer")
		})

		Convey("Then backend-only yields Backend", func() {
			So(skills.DetectRole([]string{"node", "sql"}), ShouldEqual, "Backend Developer")
		})

		Convey("Then an empty or unknown set yields the default", func() {
			So(skills.DetectRole(nil), ShouldEqual, skills.DefaultRole)
			So(skills.DetectRole([]string{"gardening"}), ShouldEqual, skills.DefaultRole)
		})
	})
}
