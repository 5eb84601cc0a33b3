package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/hgnc-miner/internal/gene"
)

func apol1Record() *gene.Record {
	return &gene.Record{
		HGNCID:            "HGNC:618",
		Symbol:            "APOL1",
		Aliases:           []string{"APOL2", "APOL3"},
		Build38Locus:      "chr22:36661906-36676353",
		Build19Locus:      "chr22:36649329-36663776",
		CandidateDiseases: gene.NewDiseaseSet("Alport syndrome", "Nephrotic syndrome"),
		FilteredDiseases:  []string{"Alport syndrome"},
	}
}

func TestCSVWriter_WriteHeader(t *testing.T) {
	var genes, aliases, diseases bytes.Buffer
	w := NewCSVWriter(&genes, &aliases, &diseases)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	assert.Equal(t, "hgnc_id,hgnc_gene_name,hg38,hg19\n", genes.String())
	assert.Equal(t, "hgnc_id,alias\n", aliases.String())
	assert.Equal(t, "hgnc_id,disease\n", diseases.String())
}

func TestCSVWriter_Write(t *testing.T) {
	var genes, aliases, diseases bytes.Buffer
	w := NewCSVWriter(&genes, &aliases, &diseases)

	require.NoError(t, w.Write(apol1Record()))
	require.NoError(t, w.Write(&gene.Record{
		HGNCID:           "HGNC:2204",
		Symbol:           "COL4A5",
		Build38Locus:     gene.NotAvailable,
		Build19Locus:     "chrX:N/A-N/A",
		FilteredDiseases: []string{"Alport syndrome, X-linked"},
	}))
	require.NoError(t, w.Flush())

	assert.Equal(t,
		"HGNC:618,APOL1,chr22:36661906-36676353,chr22:36649329-36663776\n"+
			"HGNC:2204,COL4A5,N/A,chrX:N/A-N/A\n",
		genes.String())
	assert.Equal(t, "HGNC:618,APOL2\nHGNC:618,APOL3\n", aliases.String())
	assert.Equal(t, "HGNC:618,Alport syndrome\nHGNC:2204,\"Alport syndrome, X-linked\"\n", diseases.String())
	assert.Equal(t, Counts{Genes: 2, Aliases: 2, Diseases: 2}, w.Counts())
}

func TestCreateCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")

	w, err := CreateCSV(dir)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(apol1Record()))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, AliasesFile))
	require.NoError(t, err)
	assert.Equal(t, "hgnc_id,alias\nHGNC:618,APOL2\nHGNC:618,APOL3\n", string(data))

	// A second run truncates the previous output.
	w, err = CreateCSV(dir)
	require.NoError(t, err)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Close())

	for _, name := range []string{GenesFile, AliasesFile, DiseasesFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.NotContains(t, string(data), "HGNC:618", name)
	}
}

func TestCreateCSV_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	_, err := CreateCSV(filepath.Join(file, "output"))
	assert.Error(t, err)
}
