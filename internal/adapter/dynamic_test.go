package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bkassahun/course-harvester/internal/render"
)

func TestEthernetPortalExtractsCards(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{markup: `<html><body><div id="course-list">
		<div class="shadow-card">
			<div class="line-clamp-1">Introduction to Databases</div>
			<div class="text-eshe-text-main text-base">CS-204</div>
			<a href="/portal/courses/cs-204">Go To Course</a>
		</div>
		<div class="shadow-card">
			<div class="line-clamp-1">Untitled Link-less</div>
		</div>
	</div></body></html>`}

	portal, err := newEthernetPortal(Override{}, 0, Deps{Renderer: renderer})
	require.NoError(t, err)
	require.True(t, portal.IsAllowed())

	records, err := portal.Courses(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, "Introduction to Databases", records[0].Title)
	require.Equal(t, "https://courses.ethernet.edu.et/portal/courses/cs-204", records[0].URL)
	require.NotNil(t, records[0].Subject)
	require.Equal(t, "CS-204", *records[0].Subject)
	require.Equal(t, "EthERNet Course Portal", records[0].Provider)

	// Link-less cards stay addressable through the portal page itself.
	require.Equal(t, "Untitled Link-less", records[1].Title)
	require.Equal(t, portal.pageURL, records[1].URL)
	require.NotEqual(t, records[0].ID, records[1].ID)
	require.True(t, records[1].Valid())
}

func TestEthernetPortalRendererDisabled(t *testing.T) {
	t.Parallel()

	portal, err := newEthernetPortal(Override{}, 0, Deps{})
	require.NoError(t, err)

	_, err = portal.Courses(context.Background())
	require.ErrorIs(t, err, render.ErrRendererDisabled)
}

func TestLearningGovRenderedCatalog(t *testing.T) {
	t.Parallel()

	renderer := &fakeRenderer{markup: `<html><body>
		<div class="ld-course-list-items">
			<a href="/courses/civics-101/"><h3>Civics 101</h3></a>
			<a href="/courses/amharic-grammar/"><h3>Amharic Grammar</h3></a>
		</div>
	</body></html>`}

	gov, err := newLearningGov(Override{}, 0, Deps{Renderer: renderer})
	require.NoError(t, err)

	records, err := gov.Courses(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Civics 101", records[0].Title)
	require.Equal(t, "https://learning.gov.et/courses/civics-101/", records[0].URL)
	require.Equal(t, "Learning.gov.et", records[0].Provider)
}

func TestLearningGovFallsBackToHeuristicCrawl(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{
		pages: map[string]string{
			"https://learning.gov.et": `<a href="/course/basic-it">Basic IT</a>`,
		},
	}
	gov, err := newLearningGov(Override{}, 0, Deps{Fetcher: fetcher})
	require.NoError(t, err)

	records, err := gov.Courses(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Basic IT", records[0].Title)
}
