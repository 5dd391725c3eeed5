package server

// authorizedPage is the terminal confirmation shown in the browser tab
// after a successful callback. The CLI learns about success by polling;
// nothing machine-readable is needed here.
const authorizedPage = `<!DOCTYPE html>
<meta charset="utf-8">
<title>quack authorized</title>
<style>
body
{
    display: flex;
    justify-content: center;
    align-items: center;
    font-family: sans-serif;
}
</style>
<h2>Authorized! You can close this window.</h2>
<script>history.replaceState(null, '', '/');</script>
`
